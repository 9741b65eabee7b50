// Package timing paces emulated frames against wall clock time.
package timing

import (
	"fmt"
	"time"

	"github.com/valerio/go-dmg/dmg/timer"
)

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// FrameDuration returns the wall time that a frame of the given number of
// CPU cycles takes on hardware.
func FrameDuration(cycles int) time.Duration {
	return time.Duration(float64(cycles) * float64(time.Second) / float64(timer.CPUFrequency))
}

// New builds a limiter by name: "adaptive", "ticker" or "none".
func New(kind string, frameCycles int) (Limiter, error) {
	switch kind {
	case "adaptive", "":
		return NewAdaptiveLimiter(FrameDuration(frameCycles)), nil
	case "ticker":
		return NewTickerLimiter(FrameDuration(frameCycles)), nil
	case "none":
		return NewNoOpLimiter(), nil
	default:
		return nil, fmt.Errorf("unknown limiter %q", kind)
	}
}
