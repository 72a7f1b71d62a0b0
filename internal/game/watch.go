package game

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"

	"github.com/iburimskiy/poutine-maker/internal/config"
)

// Watch reloads the page file at path whenever it is written and delivers
// the new page. Only the latest page is kept if the receiver falls behind.
// Pages that fail to load are logged and skipped.
func Watch(ctx context.Context, path string) (<-chan *config.Page, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan *config.Page, 1)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				page, err := config.Load(path)
				if err != nil {
					gameLog().Warn().Err(err).Msg("page reload failed")
					continue
				}
				select {
				case <-out:
				default:
				}
				out <- page
				gameLog().Info().Str("path", path).Msg("page changed")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				gameLog().Warn().Err(err).Msg("watch error")
			}
		}
	}()
	return out, nil
}
