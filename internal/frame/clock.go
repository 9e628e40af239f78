// Package frame drives the motion runtime's timing: a frame [Loop] that
// steps subscribers with per-frame deltas, and a debounced [Resize] source
// for viewport dimension changes.
package frame

import "time"

// Clock provides time for the frame loop. The default implementation uses
// system time; tests inject a manual clock to step frames deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// ManualClock is a test clock advanced explicitly.
type ManualClock struct {
	now time.Time
}

// NewManualClock creates a manual clock starting at the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
