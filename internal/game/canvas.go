package game

import (
	"bytes"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iburimskiy/poutine-maker/internal/poutine"
)

var (
	boldSource = sync.OnceValues(func() (*text.GoTextFaceSource, error) {
		return text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	})
	regularSource = sync.OnceValues(func() (*text.GoTextFaceSource, error) {
		return text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	})
)

var _ poutine.Canvas = (*Canvas)(nil)

// Canvas draws a widget onto an offscreen ebiten image.
type Canvas struct {
	dst    *ebiten.Image
	images map[image.Image]*ebiten.Image
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		dst:    ebiten.NewImage(width, height),
		images: make(map[image.Image]*ebiten.Image),
	}
}

// Image is the offscreen surface the host composes onto the screen.
func (c *Canvas) Image() *ebiten.Image { return c.dst }

func (c *Canvas) Size() (int, int) {
	b := c.dst.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Clear() {
	c.dst.Clear()
}

func (c *Canvas) DrawImage(img image.Image, x, y float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	c.dst.DrawImage(c.image(img), op)
}

func (c *Canvas) DrawImageScaled(img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(x, y)
	c.dst.DrawImage(c.image(img), op)
}

func (c *Canvas) FillText(s string, x, y float64, style poutine.TextStyle) {
	source, err := regularSource()
	if style.Bold {
		source, err = boldSource()
	}
	if err != nil {
		gameLog().Error().Err(err).Msg("font unavailable")
		return
	}
	face := &text.GoTextFace{Source: source, Size: style.Size}

	op := &text.DrawOptions{}
	// y is a baseline; text/v2 positions the top of the line
	op.GeoM.Translate(x, y-face.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(style.Color)
	if style.Align == poutine.AlignCenter {
		op.PrimaryAlign = text.AlignCenter
	}
	text.Draw(c.dst, s, face, op)
}

func (c *Canvas) image(img image.Image) *ebiten.Image {
	if e, ok := c.images[img]; ok {
		return e
	}
	e := ebiten.NewImageFromImage(img)
	c.images[img] = e
	return e
}

// Deallocate releases the surface and every converted image.
func (c *Canvas) Deallocate() {
	for _, e := range c.images {
		e.Deallocate()
	}
	clear(c.images)
	c.dst.Deallocate()
}
