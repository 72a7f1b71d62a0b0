package game

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iburimskiy/poutine-maker/internal/assets"
	"github.com/iburimskiy/poutine-maker/internal/config"
	"github.com/iburimskiy/poutine-maker/internal/poutine"
)

// gameLog is built on first use so it picks up the output configured by main.
var gameLog = sync.OnceValue(func() *zerolog.Logger {
	l := log.With().Str("module", "game").Logger()
	return &l
})

// LoaderFunc builds the asset loader for a page.
type LoaderFunc func(page *config.Page) poutine.Loader

// DefaultLoader resolves assets relative to the page file.
func DefaultLoader(page *config.Page) poutine.Loader {
	return assets.NewLoader(assets.NewResolver(page.Dir))
}

// slot is one discovered canvas. Exactly one of widget and err is set.
type slot struct {
	canvas  config.Canvas
	widget  *poutine.Widget
	err     error
	surface *Canvas
}

func (s *slot) step() {
	if s.widget == nil {
		return
	}
	if s.surface == nil {
		s.surface = NewCanvas(s.canvas.Width, s.canvas.Height)
	}
	s.widget.Step(s.surface)
}

func (s *slot) release() {
	if s.widget != nil {
		s.widget.Stop()
	}
	if s.surface != nil {
		s.surface.Deallocate()
		s.surface = nil
	}
}

// mount creates one widget per canvas carrying the animation class. A canvas
// whose configuration is missing or invalid gets an error instead.
func mount(page *config.Page, loader poutine.Loader) []*slot {
	var slots []*slot
	for _, c := range page.Discover() {
		s := &slot{canvas: c}
		cfg, err := page.WidgetFor(c.ID)
		if err != nil {
			s.err = err
			gameLog().Error().Err(err).Str("canvas", c.ID).Msg("widget not started")
		} else {
			s.widget = poutine.New(c.ID, cfg, loader)
		}
		slots = append(slots, s)
	}
	return slots
}

type game struct {
	ctx       context.Context
	page      *config.Page
	newLoader LoaderFunc
	slots     []*slot
	reload    <-chan *config.Page

	// pointer edge detection
	cursorX, cursorY int
	cursorKnown      bool

	debug bool
}

func newGame(ctx context.Context, page *config.Page, newLoader LoaderFunc) *game {
	g := &game{ctx: ctx, newLoader: newLoader}
	g.replace(page)
	return g
}

// replace swaps the page, stopping every widget of the previous one.
func (g *game) replace(page *config.Page) {
	for _, s := range g.slots {
		s.release()
	}
	g.page = page
	g.slots = mount(page, g.newLoader(page))
	for _, s := range g.slots {
		if s.widget != nil {
			s.widget.Start(g.ctx)
		}
	}
	gameLog().Info().Int("canvases", len(g.slots)).Msg("page mounted")
}

func (g *game) close() {
	for _, s := range g.slots {
		s.release()
	}
	g.slots = nil
}

// slotAt returns the topmost canvas under the window position.
func (g *game) slotAt(x, y int) *slot {
	for i := len(g.slots) - 1; i >= 0; i-- {
		if contains(g.slots[i].canvas, x, y) {
			return g.slots[i]
		}
	}
	return nil
}

// movePointer forwards a cursor move to the canvas under it, in canvas
// coordinates.
func (g *game) movePointer(x, y int) {
	if g.cursorKnown && x == g.cursorX && y == g.cursorY {
		return
	}
	first := !g.cursorKnown
	g.cursorX, g.cursorY, g.cursorKnown = x, y, true
	if first {
		return
	}
	s := g.slotAt(x, y)
	if s == nil || s.widget == nil {
		return
	}
	s.widget.PointerMove(float64(x-s.canvas.X), float64(y-s.canvas.Y))
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.close()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
	select {
	case <-g.ctx.Done():
		g.close()
		return ebiten.Termination
	case page := <-g.reload:
		g.replace(page)
		ebiten.SetWindowSize(page.Width, page.Height)
	default:
	}

	g.movePointer(ebiten.CursorPosition())

	for _, s := range g.slots {
		s.step()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	for _, s := range g.slots {
		c := s.canvas
		if s.surface != nil {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(c.X), float64(c.Y))
			screen.DrawImage(s.surface.Image(), op)
		}
		switch {
		case s.err != nil:
			ebitenutil.DebugPrintAt(screen, "Error: "+s.err.Error(), c.X+4, c.Y+4)
		case s.widget.State() == poutine.StateFailed:
			ebitenutil.DebugPrintAt(screen, "Error: "+s.widget.Err().Error(), c.X+4, c.Y+4)
		}
	}

	if g.debug {
		ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
	}
}

func (g *game) status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TPS %.1f  FPS %.1f\n", ebiten.ActualTPS(), ebiten.ActualFPS())
	for _, s := range g.slots {
		if s.widget == nil {
			fmt.Fprintf(&b, "%s: not started\n", s.canvas.ID)
			continue
		}
		w := s.widget
		n, required := w.Progress()
		fmt.Fprintf(&b, "%s: %s %d/%d frame %d (%s)\n",
			w.ID(), w.State(), n, required, w.Frame(), formatDuration(frameTime(w.Frame())))
	}
	return b.String()
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.page.Width, g.page.Height
}

// Options configures Run.
type Options struct {
	// WatchPath reloads the page whenever this file changes.
	WatchPath string
	Debug     bool
	Loader    LoaderFunc
}

// Run opens the window and animates every canvas of the page until the
// window is closed or ctx ends.
func Run(ctx context.Context, page *config.Page, opts Options) error {
	if opts.Loader == nil {
		opts.Loader = DefaultLoader
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := newGame(ctx, page, opts.Loader)
	g.debug = opts.Debug
	if opts.WatchPath != "" {
		reload, err := Watch(ctx, opts.WatchPath)
		if err != nil {
			g.close()
			return err
		}
		g.reload = reload
	}

	title := page.Title
	if title == "" {
		title = "Poutine Maker"
	}
	ebiten.SetWindowSize(page.Width, page.Height)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(config.FramesPerSecond)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
