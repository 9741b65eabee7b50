package timing

import (
	"log/slog"
	"time"
)

const (
	busyWaitThreshold = 2 * time.Millisecond
	maxLag            = 5 * time.Millisecond
	driftCheckFrames  = 60
	maxDrift          = 10 * time.Millisecond
)

// AdaptiveLimiter uses precise timing with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64

	now   func() time.Time
	sleep func(time.Duration)
}

func NewAdaptiveLimiter(frame time.Duration) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		targetFrameTime: frame,
		nextFrameTime:   time.Now(),
		now:             time.Now,
		sleep:           time.Sleep,
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := a.now()
	wait := a.nextFrameTime.Sub(now)

	switch {
	case wait > busyWaitThreshold:
		a.sleep(wait - time.Millisecond)
		a.spinUntil(a.nextFrameTime)
	case wait > 0:
		a.spinUntil(a.nextFrameTime)
	case wait < -maxLag:
		// too far behind to catch up, restart the schedule from now
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%driftCheckFrames == 0 {
		drift := a.now().Sub(a.nextFrameTime.Add(-a.targetFrameTime))
		if drift.Abs() > maxDrift {
			a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
			slog.Debug("Frame timing drift correction", "drift_ms", drift.Milliseconds(), "frames", a.frameCounter)
		}
	}
}

func (a *AdaptiveLimiter) spinUntil(deadline time.Time) {
	for a.now().Before(deadline) {
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrameTime = a.now()
	a.frameCounter = 0
}
