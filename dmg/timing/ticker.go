package timing

import "time"

// TickerLimiter paces frames on a time.Ticker. A late frame is not made up
// for: the ticker drops ticks the loop was too slow to receive.
type TickerLimiter struct {
	frame  time.Duration
	ticker *time.Ticker
}

func NewTickerLimiter(frame time.Duration) *TickerLimiter {
	return &TickerLimiter{
		frame:  frame,
		ticker: time.NewTicker(frame),
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

// Reset restarts the period and discards a tick left over from a pause.
func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.frame)
	select {
	case <-t.ticker.C:
	default:
	}
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
