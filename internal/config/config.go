package config

import (
	"math"
	"time"
)

const (
	// Fallback window size when a page declares no canvases.
	WindowWidth  = 640
	WindowHeight = 480

	FramesPerSecond = 60
	FrameInterval   = time.Second / FramesPerSecond

	// CanvasClass marks the canvases that get a widget.
	CanvasClass = "poutine-maker-animation"

	// Orbit parameters
	BaseRadius     = 190.0
	PulseAmplitude = 30.0
	PulsePeriod    = 10.0
	RotationSpeed  = math.Pi / 200

	// Placeholder offset for toppings that finish loading before the first frame
	PlaceholderStride = 100

	// Text
	TitleFontSize   = 20
	NoteFontSize    = 12
	ShadowOffset    = 1
	NoteX           = 5
	NoteBottomInset = 15
	VegetarianNote  = "This is a vegetarian poutine!"
)
