package poutine

import (
	"image"
	"image/color"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// TextStyle describes how FillText renders a string. Y is the baseline.
type TextStyle struct {
	Size  float64
	Bold  bool
	Align Align
	Color color.Color
}

// Canvas is the 2D surface a widget draws on. Backends convert and cache
// images on their side; the widget only hands over decoded images.
type Canvas interface {
	Size() (width, height int)
	Clear()
	DrawImage(img image.Image, x, y float64)
	DrawImageScaled(img image.Image, x, y, w, h float64)
	FillText(s string, x, y float64, style TextStyle)
}
