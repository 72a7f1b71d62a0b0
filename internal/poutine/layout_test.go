package poutine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpacingSweepsFullCircle(t *testing.T) {
	for n := 1; n <= 64; n++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += Spacing(n)
		}
		assert.InDelta(t, 2*math.Pi, sum, 1e-9, "n=%d", n)
	}
}

func TestSpacingZeroToppings(t *testing.T) {
	assert.Equal(t, 0.0, Spacing(0))
	assert.False(t, math.IsNaN(Spacing(0)))
}

func TestRadiusBounds(t *testing.T) {
	for frame := 0; frame < 20000; frame++ {
		r := Radius(frame)
		assert.GreaterOrEqual(t, r, 160.0)
		assert.LessOrEqual(t, r, 220.0)
	}
	assert.Equal(t, 190.0, Radius(0))
}

func TestRotationOffset(t *testing.T) {
	assert.Equal(t, 0.0, RotationOffset(0))
	assert.InDelta(t, 2*math.Pi, RotationOffset(400), 1e-9)
}

func TestToppingPosition(t *testing.T) {
	origin := Point{X: 250, Y: 250}

	p := ToppingPosition(origin, 190, 0, 40, 20)
	assert.InDelta(t, 250+190-20, p.X, 1e-9)
	assert.InDelta(t, 250-10, p.Y, 1e-9)

	p = ToppingPosition(origin, 100, math.Pi/2, 10, 10)
	assert.InDelta(t, 245, p.X, 1e-9)
	assert.InDelta(t, 345, p.Y, 1e-9)
}

func TestOverlayPosition(t *testing.T) {
	p := OverlayPosition(Point{X: 100, Y: 80}, 30, 50)
	assert.Equal(t, Point{X: 85, Y: 55}, p)
}
