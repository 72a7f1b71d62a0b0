package game

import (
	"fmt"
	"time"

	"github.com/iburimskiy/poutine-maker/internal/config"
)

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// frameTime is how long a widget has been animating at the nominal rate.
func frameTime(frame int) time.Duration {
	return time.Duration(frame) * config.FrameInterval
}

func contains(c config.Canvas, x, y int) bool {
	return x >= c.X && x < c.X+c.Width && y >= c.Y && y < c.Y+c.Height
}
