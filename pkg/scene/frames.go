package scene

import (
	"context"
	"time"
)

// FrameSource paces the render loop.
type FrameSource interface {
	// Next blocks until the next frame is due. It returns false once ctx is
	// done or the source is exhausted.
	Next(ctx context.Context) (time.Time, bool)
	Stop()
}

// TickerFrames emits frames at a fixed rate.
type TickerFrames struct {
	ticker *time.Ticker
}

// NewTickerFrames creates a source ticking fps times per second.
func NewTickerFrames(fps int) *TickerFrames {
	if fps <= 0 {
		fps = 60
	}
	return &TickerFrames{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (t *TickerFrames) Next(ctx context.Context) (time.Time, bool) {
	select {
	case <-ctx.Done():
		return time.Time{}, false
	case now := <-t.ticker.C:
		return now, true
	}
}

func (t *TickerFrames) Stop() {
	t.ticker.Stop()
}

// ManualFrames emits a frame for every Tick call.
type ManualFrames struct {
	ch chan time.Time
}

func NewManualFrames() *ManualFrames {
	return &ManualFrames{ch: make(chan time.Time)}
}

// Tick hands one frame to the loop. It returns false when no loop picked it
// up within timeout.
func (m *ManualFrames) Tick(now time.Time, timeout time.Duration) bool {
	select {
	case m.ch <- now:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (m *ManualFrames) Next(ctx context.Context) (time.Time, bool) {
	select {
	case <-ctx.Done():
		return time.Time{}, false
	case now := <-m.ch:
		return now, true
	}
}

func (m *ManualFrames) Stop() {}
