package frame

import (
	"context"
	"sync"
	"time"

	"github.com/jamiealquiza/tachymeter"

	"github.com/motifkit/motif/internal/signal"
)

// Frame is the payload delivered to tick subscribers once per frame.
type Frame struct {
	// Delta is the animated time elapsed since the previous frame: the
	// real clock delta scaled by the loop's time scale.
	Delta time.Duration
	// Time is a monotonically increasing counter of seconds accumulated
	// from frame deltas. It is not wall-clock time.
	Time float64
}

// Loop steps tick subscribers once per frame. Frames are produced either by
// Run (interval-driven) or by explicit Step calls in tests.
//
// Frame durations are recorded in a sliding tachymeter window so the dev
// server can expose timing percentiles.
type Loop struct {
	clock Clock
	ticks *signal.Subscribable[Frame]
	meter *tachymeter.Tachymeter

	mu    sync.Mutex
	last  time.Time
	began bool
	time  float64
	scale float64
}

// statsWindow is the number of recent frames kept for timing percentiles.
const statsWindow = 240

// NewLoop creates a frame loop reading time from clock. A nil clock falls
// back to the system clock.
func NewLoop(clock Clock) *Loop {
	if clock == nil {
		clock = SystemClock()
	}
	return &Loop{
		clock: clock,
		ticks: signal.NewSubscribable[Frame](),
		meter: tachymeter.New(&tachymeter.Config{Size: statsWindow}),
		scale: 1,
	}
}

// Ticks returns the subscriber list notified on every frame.
func (l *Loop) Ticks() *signal.Subscribable[Frame] {
	return l.ticks
}

// SetTimeScale adjusts how fast animated time advances relative to the real
// clock: 1 is real time, 0.5 runs every frame consumer at half speed.
func (l *Loop) SetTimeScale(scale float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scale = scale
}

// Step produces a single frame from the clock's current time and notifies
// tick subscribers synchronously. The first Step after construction emits a
// zero delta.
func (l *Loop) Step() Frame {
	now := l.clock.Now()

	l.mu.Lock()
	var raw time.Duration
	if l.began {
		raw = now.Sub(l.last)
	}
	l.last = now
	l.began = true
	delta := time.Duration(float64(raw) * l.scale)
	l.time += delta.Seconds()
	f := Frame{Delta: delta, Time: l.time}
	l.mu.Unlock()

	// The meter tracks real frame pacing, unaffected by the time scale.
	if raw > 0 {
		l.meter.AddTime(raw)
	}
	l.ticks.Notify(f)
	return f
}

// Run steps the loop at the given interval until ctx is cancelled.
func (l *Loop) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Step()
		}
	}
}

// Stats returns timing percentiles over the recent frame window.
func (l *Loop) Stats() *tachymeter.Metrics {
	return l.meter.Calc()
}
