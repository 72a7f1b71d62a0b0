package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iburimskiy/poutine-maker/internal/assets"
	"github.com/iburimskiy/poutine-maker/internal/config"
	"github.com/iburimskiy/poutine-maker/internal/game"
	"github.com/iburimskiy/poutine-maker/internal/poutine"
	"github.com/iburimskiy/poutine-maker/internal/snapshot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("poutine-maker failed")
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var level string
	root := &cobra.Command{
		Use:           "poutine-maker",
		Short:         "Animated poutine toppings orbiting a title",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := zerolog.ParseLevel(level)
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(lvl)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(runCmd(), snapshotCmd())
	return root
}

func runCmd() *cobra.Command {
	var watch, debug bool
	cmd := &cobra.Command{
		Use:   "run [page]",
		Short: "Open a window animating every poutine canvas of a page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				var err error
				if path, err = selectPage(); err != nil || path == "" {
					return err
				}
			}

			page, err := config.Load(path)
			if err != nil {
				return err
			}
			opts := game.Options{Debug: debug}
			if watch {
				opts.WatchPath = path
			}
			return game.Run(cmd.Context(), page, opts)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the page when the file changes")
	cmd.Flags().BoolVar(&debug, "debug", false, "show the status line (toggle with F3)")
	return cmd
}

// selectPage asks for a page file. An empty path means the dialog was
// canceled.
func selectPage() (string, error) {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Poutine Page"),
		zenity.FileFilters{{
			Name:     "Poutine pages",
			Patterns: []string{"*.json", "*.toml", "*.yaml", "*.yml"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", err
	}
	return filename, nil
}

func snapshotCmd() *cobra.Command {
	var (
		canvasID string
		frame    int
		out      string
		pointer  string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "snapshot <page>",
		Short: "Render one frame of a canvas to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := config.Load(args[0])
			if err != nil {
				return err
			}
			canvas, err := pickCanvas(page, canvasID)
			if err != nil {
				return err
			}
			cfg, err := page.WidgetFor(canvas.ID)
			if err != nil {
				return err
			}

			opts := snapshot.Options{Frame: frame}
			if pointer != "" {
				var p poutine.Point
				if _, err := fmt.Sscanf(pointer, "%g,%g", &p.X, &p.Y); err != nil {
					return fmt.Errorf("--pointer %q: want x,y: %w", pointer, err)
				}
				opts.Pointer = &p
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			w := poutine.New(canvas.ID, cfg, assets.NewLoader(assets.NewResolver(page.Dir)))
			c := snapshot.NewCanvas(canvas.Width, canvas.Height)
			defer c.Close()
			if err := snapshot.Render(ctx, w, c, opts); err != nil {
				return err
			}
			if err := c.SavePNG(out); err != nil {
				return err
			}
			log.Info().Str("canvas", canvas.ID).Int("frame", frame).Str("out", out).Msg("snapshot written")
			return nil
		},
	}
	cmd.Flags().StringVar(&canvasID, "canvas", "", "canvas id (defaults to the only poutine canvas)")
	cmd.Flags().IntVar(&frame, "frame", 0, "frame number to render")
	cmd.Flags().StringVarP(&out, "out", "o", "frame.png", "output PNG path")
	cmd.Flags().StringVar(&pointer, "pointer", "", "pointer position as x,y")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up loading assets after this long (0 waits forever)")
	return cmd
}

func pickCanvas(page *config.Page, id string) (config.Canvas, error) {
	found := page.Discover()
	if id == "" {
		if len(found) != 1 {
			return config.Canvas{}, fmt.Errorf("page has %d poutine canvases, pick one with --canvas", len(found))
		}
		return found[0], nil
	}
	for _, c := range found {
		if c.ID == id {
			return c, nil
		}
	}
	return config.Canvas{}, fmt.Errorf("no poutine canvas %q", id)
}
