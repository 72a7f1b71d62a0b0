package poutine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iburimskiy/poutine-maker/internal/assets"
	"github.com/iburimskiy/poutine-maker/internal/config"
)

// ErrStopped is returned by Run after Stop.
var ErrStopped = errors.New("widget stopped")

type State int

const (
	StateIdle State = iota
	StateLoading
	StateRunning
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Loader fetches the assets of a widget.
type Loader interface {
	Load(ctx context.Context, req assets.Request) (*assets.Set, error)
}

type eventKind int

const (
	toppingLoaded eventKind = iota
	backgroundLoaded
	overlayLoaded
	loadDone
)

type event struct {
	kind  eventKind
	index int
	img   image.Image
	set   *assets.Set
	err   error
}

var (
	titleShadow = TextStyle{Size: config.TitleFontSize, Bold: true, Align: AlignCenter, Color: color.Black}
	titleFill   = TextStyle{Size: config.TitleFontSize, Bold: true, Align: AlignCenter, Color: color.White}
	noteStyle   = TextStyle{Size: config.NoteFontSize, Bold: true, Align: AlignLeft, Color: color.White}
)

// Widget is one animated poutine bound to one canvas.
//
// Loading happens on background goroutines that only post events; every
// other field is owned by the goroutine calling Step and PointerMove.
type Widget struct {
	id     string
	cfg    config.Widget
	loader Loader
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	start  sync.Once
	events chan event

	state   State
	set     *assets.Set
	overlay image.Image
	// overlayDone is set once the overlay load has reported, either way.
	overlayDone bool
	loaded      int
	frame       int
	err         error

	pointer     Point
	pointerSeen bool
}

// New builds a widget for the canvas id. Nothing is fetched before Start.
func New(id string, cfg config.Widget, loader Loader) *Widget {
	ctx, cancel := context.WithCancel(context.Background())
	return &Widget{
		id:     id,
		cfg:    cfg,
		loader: loader,
		log:    log.With().Str("module", "poutine").Str("canvas", id).Logger(),
		ctx:    ctx,
		cancel: cancel,
		// every hook posts exactly once, so senders never block
		events: make(chan event, len(cfg.Toppings)+3),
	}
}

func (w *Widget) ID() string    { return w.id }
func (w *Widget) State() State  { return w.state }
func (w *Widget) Frame() int    { return w.frame }
func (w *Widget) Err() error    { return w.err }
func (w *Widget) Required() int { return len(w.cfg.Toppings) + 1 }
func (w *Widget) Title() string { return w.cfg.Title }
func (w *Widget) Stopped() bool { return w.ctx.Err() != nil }

// Progress reports how many required assets have loaded out of Required.
func (w *Widget) Progress() (int, int) {
	n := w.loaded
	if w.set != nil {
		n = w.Required()
	}
	return n, w.Required()
}

// Start begins loading the assets. The widget also stops when ctx ends.
// Calls after the first are ignored.
func (w *Widget) Start(ctx context.Context) {
	w.start.Do(func() {
		detach := context.AfterFunc(ctx, w.cancel)
		// drop the registration on ctx once the widget ends on its own
		context.AfterFunc(w.ctx, func() { detach() })
		if w.Stopped() {
			return
		}
		w.state = StateLoading
		go w.load()
	})
}

func (w *Widget) load() {
	started := time.Now()
	set, err := w.loader.Load(w.ctx, assets.Request{
		Toppings:   w.cfg.Toppings,
		Background: w.cfg.Background,
		Overlay:    w.cfg.Overlay,
		Timeout:    time.Duration(w.cfg.LoadTimeout),
		OnTopping: func(i int, img image.Image) {
			w.events <- event{kind: toppingLoaded, index: i, img: img}
		},
		OnBackground: func(img image.Image) {
			w.events <- event{kind: backgroundLoaded, img: img}
		},
		OnOverlay: func(img image.Image, err error) {
			w.events <- event{kind: overlayLoaded, img: img, err: err}
		},
	})
	if err == nil {
		w.log.Debug().Dur("took", time.Since(started)).Msg("assets ready")
	}
	w.events <- event{kind: loadDone, set: set, err: err}
}

// Stop ends the animation and cancels any pending loads. It is safe to call
// from any goroutine and more than once.
func (w *Widget) Stop() {
	w.cancel()
}

// PointerMove records the pointer position in canvas coordinates.
func (w *Widget) PointerMove(x, y float64) {
	w.pointer = Point{X: x, Y: y}
	w.pointerSeen = true
}

// Step is one tick of the widget. It applies finished loads and, once every
// required asset is in, renders exactly one frame and advances the counter.
func (w *Widget) Step(c Canvas) {
	w.Poll(c)
	if w.state != StateRunning {
		return
	}
	w.render(c)
	w.frame++
}

// Poll applies finished loads without rendering a frame.
func (w *Widget) Poll(c Canvas) {
	if w.state == StateStopped {
		return
	}
	if w.Stopped() {
		w.state = StateStopped
		return
	}
	w.drain(c)
}

// OverlayPending reports whether a configured overlay has not reported yet.
func (w *Widget) OverlayPending() bool {
	return w.cfg.Overlay != "" && !w.overlayDone
}

func (w *Widget) drain(c Canvas) {
	for {
		select {
		case ev := <-w.events:
			w.apply(ev, c)
		default:
			return
		}
	}
}

func (w *Widget) apply(ev event, c Canvas) {
	switch ev.kind {
	case toppingLoaded:
		w.loaded++
		if w.state == StateLoading {
			c.DrawImage(ev.img, float64(config.PlaceholderStride*ev.index), 0)
		}
	case backgroundLoaded:
		w.loaded++
	case overlayLoaded:
		w.overlayDone = true
		if ev.err == nil {
			w.overlay = ev.img
		}
	case loadDone:
		switch {
		case ev.err == nil:
			w.set = ev.set
			w.state = StateRunning
		case w.Stopped():
			w.state = StateStopped
		default:
			w.err = ev.err
			w.state = StateFailed
			w.log.Error().Err(ev.err).Msg("loading failed")
		}
	}
}

func (w *Widget) render(c Canvas) {
	width, height := c.Size()

	c.Clear()
	c.DrawImageScaled(w.set.Background, 0, 0, float64(width), float64(height))

	radius := Radius(w.frame)
	rotation := RotationOffset(w.frame)
	origin := Point{X: float64(width) / 2, Y: float64(height) / 2}
	spacing := Spacing(len(w.set.Toppings))

	for i, img := range w.set.Toppings {
		b := img.Bounds()
		p := ToppingPosition(origin, radius, rotation+float64(i)*spacing, b.Dx(), b.Dy())
		c.DrawImage(img, p.X, p.Y)
	}

	c.FillText(w.cfg.Title, origin.X+config.ShadowOffset, origin.Y+config.ShadowOffset, titleShadow)
	c.FillText(w.cfg.Title, origin.X, origin.Y, titleFill)

	if w.cfg.Vegetarian {
		c.FillText(config.VegetarianNote, config.NoteX, float64(height-config.NoteBottomInset), noteStyle)
	}

	// overlay last so it sits on top
	w.drawOverlay(c, width, height)
}

func (w *Widget) drawOverlay(c Canvas, width, height int) {
	if w.overlay == nil || !w.pointerSeen {
		return
	}
	b := w.overlay.Bounds()
	p := OverlayPosition(w.pointer, b.Dx(), b.Dy())
	if p.X <= 0 || p.Y <= 0 || p.X >= float64(width) || p.Y >= float64(height) {
		return
	}
	c.DrawImage(w.overlay, p.X, p.Y)
}

// Run drives the widget on its own 60 Hz ticker for hosts without a frame
// clock. It returns ErrStopped after Stop, the context error when ctx ends,
// or the load error if loading fails.
func (w *Widget) Run(ctx context.Context, c Canvas) error {
	w.Start(ctx)
	t := time.NewTicker(config.FrameInterval)
	defer t.Stop()
	for {
		w.Step(c)
		if w.state == StateFailed {
			return w.err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.ctx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			return ErrStopped
		case <-t.C:
		}
	}
}
