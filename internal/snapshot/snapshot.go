// Package snapshot renders widget frames without a window, on a gg software
// context.
package snapshot

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iburimskiy/poutine-maker/internal/poutine"
)

var (
	boldSource = sync.OnceValues(func() (*text.FontSource, error) {
		return text.NewFontSource(gobold.TTF)
	})
	regularSource = sync.OnceValues(func() (*text.FontSource, error) {
		return text.NewFontSource(goregular.TTF)
	})
)

var _ poutine.Canvas = (*Canvas)(nil)

// Canvas is a poutine.Canvas backed by a gg context.
type Canvas struct {
	dc     *gg.Context
	images map[image.Image]*gg.ImageBuf
	faces  map[poutine.TextStyle]text.Face
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		dc:     gg.NewContext(width, height),
		images: make(map[image.Image]*gg.ImageBuf),
		faces:  make(map[poutine.TextStyle]text.Face),
	}
}

func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

func (c *Canvas) Clear() {
	c.dc.Clear()
}

func (c *Canvas) DrawImage(img image.Image, x, y float64) {
	c.dc.DrawImage(c.buffer(img), x, y)
}

func (c *Canvas) DrawImageScaled(img image.Image, x, y, w, h float64) {
	c.dc.DrawImageEx(c.buffer(img), gg.DrawImageOptions{
		X:         x,
		Y:         y,
		DstWidth:  w,
		DstHeight: h,
	})
}

func (c *Canvas) FillText(s string, x, y float64, style poutine.TextStyle) {
	face, err := c.face(style)
	if err != nil {
		return
	}
	c.dc.SetFont(face)
	c.dc.SetColor(style.Color)
	if style.Align == poutine.AlignCenter {
		c.dc.DrawStringAnchored(s, x, y, 0.5, 0)
		return
	}
	c.dc.DrawString(s, x, y)
}

func (c *Canvas) face(style poutine.TextStyle) (text.Face, error) {
	key := poutine.TextStyle{Size: style.Size, Bold: style.Bold}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	source, err := regularSource()
	if style.Bold {
		source, err = boldSource()
	}
	if err != nil {
		return nil, err
	}
	f := source.Face(style.Size)
	c.faces[key] = f
	return f, nil
}

func (c *Canvas) buffer(img image.Image) *gg.ImageBuf {
	if b, ok := c.images[img]; ok {
		return b
	}
	b := gg.ImageBufFromImage(img)
	c.images[img] = b
	return b
}

// Image returns the rendered pixels.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

func (c *Canvas) SavePNG(path string) error {
	return c.dc.SavePNG(path)
}

func (c *Canvas) Close() error {
	return c.dc.Close()
}

// Options selects what Render produces.
type Options struct {
	// Frame is the frame number to stop at.
	Frame int
	// Pointer, when set, is reported as a pointer move before rendering.
	Pointer *poutine.Point
}

// Render starts w, waits for its assets and steps it until frame opts.Frame
// has been drawn onto c. When opts.Pointer is set it also waits for the
// overlay to load or fail. The widget is stopped on return.
func Render(ctx context.Context, w *poutine.Widget, c *Canvas, opts Options) error {
	if opts.Frame < 0 {
		return fmt.Errorf("frame %d is negative", opts.Frame)
	}
	defer w.Stop()
	w.Start(ctx)
	if opts.Pointer != nil {
		w.PointerMove(opts.Pointer.X, opts.Pointer.Y)
	}

	// with a pointer the frame must not depend on when the overlay lands
	waiting := func() bool {
		switch w.State() {
		case poutine.StateLoading:
			return true
		case poutine.StateRunning:
			return opts.Pointer != nil && w.OverlayPending()
		}
		return false
	}
	poll := time.NewTicker(time.Millisecond)
	defer poll.Stop()
	for waiting() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
		}
		w.Poll(c)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch w.State() {
		case poutine.StateRunning:
		case poutine.StateFailed:
			return w.Err()
		default:
			return poutine.ErrStopped
		}
		if w.Frame() > opts.Frame {
			return nil
		}
		w.Step(c)
	}
}
