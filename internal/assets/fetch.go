package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when fetched bytes are not a known image format.
var ErrNotImage = errors.New("not an image")

// Fetcher returns the raw bytes behind an asset reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Resolver fetches http(s) URLs over the network and everything else from
// disk. Relative paths are resolved against Dir.
type Resolver struct {
	Dir    string
	Client *http.Client
}

// NewResolver returns a Resolver rooted at dir using http.DefaultClient.
func NewResolver(dir string) *Resolver {
	return &Resolver{Dir: dir, Client: http.DefaultClient}
}

func (r *Resolver) Fetch(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return r.fetchURL(ctx, ref)
		case "file":
			return r.readFile(u.Path)
		}
	}
	return r.readFile(ref)
}

func (r *Resolver) fetchURL(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", ref, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (r *Resolver) readFile(path string) ([]byte, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) && r.Dir != "" {
		path = filepath.Join(r.Dir, filepath.FromSlash(path))
	}
	return os.ReadFile(path)
}

// Decode sniffs data and decodes it into an image.
func Decode(data []byte) (image.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, err
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w (detected %q)", ErrNotImage, strings.TrimSpace(kind.MIME.Value))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind.Extension, err)
	}
	return img, nil
}

// Image fetches ref and decodes it.
func Image(ctx context.Context, f Fetcher, ref string) (image.Image, error) {
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return img, nil
}
