package assets

import (
	"context"
	"image"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Request lists the assets of one widget. Hooks run on loader goroutines.
type Request struct {
	Toppings   []string
	Background string
	Overlay    string
	// Timeout bounds the required loads. Zero waits forever.
	Timeout time.Duration

	// OnTopping fires as soon as topping i has decoded.
	OnTopping func(i int, img image.Image)
	// OnBackground fires once the background has decoded.
	OnBackground func(img image.Image)
	// OnOverlay reports the overlay result. It is not part of the join.
	OnOverlay func(img image.Image, err error)
}

// Required is the number of loads that gate the animation.
func (r Request) Required() int {
	return len(r.Toppings) + 1
}

// Set holds the assets the animation cannot start without.
type Set struct {
	Toppings   []image.Image
	Background image.Image
}

// Loader fetches the assets of a widget concurrently.
type Loader struct {
	fetcher Fetcher
	log     zerolog.Logger
}

func NewLoader(f Fetcher) *Loader {
	return &Loader{
		fetcher: f,
		log:     log.With().Str("module", "assets").Logger(),
	}
}

// Load fetches every topping and the background and returns once all of
// them have decoded, or with the first error. The overlay is started too but
// Load never waits for it.
func (l *Loader) Load(ctx context.Context, req Request) (*Set, error) {
	if req.Overlay != "" {
		go func() {
			img, err := Image(ctx, l.fetcher, req.Overlay)
			if err != nil {
				l.log.Warn().Err(err).Msg("overlay unavailable")
			}
			if req.OnOverlay != nil {
				req.OnOverlay(img, err)
			}
		}()
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	set := &Set{Toppings: make([]image.Image, len(req.Toppings))}
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range req.Toppings {
		g.Go(func() error {
			img, err := Image(gctx, l.fetcher, ref)
			if err != nil {
				return err
			}
			set.Toppings[i] = img
			if req.OnTopping != nil {
				req.OnTopping(i, img)
			}
			return nil
		})
	}
	g.Go(func() error {
		img, err := Image(gctx, l.fetcher, req.Background)
		if err != nil {
			return err
		}
		set.Background = img
		if req.OnBackground != nil {
			req.OnBackground(img)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	l.log.Debug().Int("count", req.Required()).Msg("required assets loaded")
	return set, nil
}
