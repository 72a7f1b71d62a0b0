package poutine

import (
	"math"

	"github.com/iburimskiy/poutine-maker/internal/config"
)

type Point struct {
	X, Y float64
}

// Radius is the orbit radius at a frame. It pulses between
// BaseRadius-PulseAmplitude and BaseRadius+PulseAmplitude.
func Radius(frame int) float64 {
	return config.BaseRadius + config.PulseAmplitude*math.Sin(float64(frame)/config.PulsePeriod)
}

// RotationOffset is the angle of the first topping at a frame.
func RotationOffset(frame int) float64 {
	return float64(frame) * config.RotationSpeed
}

// Spacing is the angle between neighbouring toppings. No toppings means no
// spacing rather than a division by zero.
func Spacing(n int) float64 {
	if n <= 0 {
		return 0
	}
	return 2 * math.Pi / float64(n)
}

// ToppingPosition returns the top-left corner of a w×h image whose center
// sits on the orbit at angle.
func ToppingPosition(origin Point, radius, angle float64, w, h int) Point {
	return Point{
		X: origin.X + math.Cos(angle)*radius - float64(w)/2,
		Y: origin.Y + math.Sin(angle)*radius - float64(h)/2,
	}
}

// OverlayPosition centers a w×h image on the pointer.
func OverlayPosition(pointer Point, w, h int) Point {
	return Point{
		X: pointer.X - float64(w)/2,
		Y: pointer.Y - float64(h)/2,
	}
}
