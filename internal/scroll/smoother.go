// Package scroll provides the smooth-scroll engine: a target position
// chased with exponential smoothing on every frame, publishing scroll
// notifications the rest of the runtime consumes.
package scroll

import (
	"math"
	"sync"

	"github.com/motifkit/motif/internal/frame"
	"github.com/motifkit/motif/internal/layout"
	"github.com/motifkit/motif/internal/signal"
)

// DefaultLerp is the default smoothing rate, in units of "fraction of the
// remaining distance closed per second".
const DefaultLerp = 10.0

// settleEpsilon is the distance below which the position snaps to target.
const settleEpsilon = 0.05

// Smoother interpolates the current scroll position toward a target on
// every frame and notifies subscribers whenever the position moves. The
// scrollable range is clamped to the document height read from metrics.
type Smoother struct {
	metrics layout.Metrics
	sub     *signal.Subscribable[layout.ScrollState]

	mu        sync.Mutex
	target    float64
	current   float64
	limit     float64
	lerp      float64
	direction int
}

// NewSmoother creates a smoother over the given metrics. A non-positive
// lerp falls back to DefaultLerp.
func NewSmoother(metrics layout.Metrics, lerp float64) *Smoother {
	if lerp <= 0 {
		lerp = DefaultLerp
	}
	s := &Smoother{
		metrics:   metrics,
		sub:       signal.NewSubscribable[layout.ScrollState](),
		lerp:      lerp,
		direction: 1,
	}
	s.Resize()
	return s
}

// Positions returns the subscriber list notified on every scroll movement.
func (s *Smoother) Positions() *signal.Subscribable[layout.ScrollState] {
	return s.sub
}

// Current returns the smoothed scroll position.
func (s *Smoother) Current() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ScrollTo sets the scroll target. With immediate set the current position
// jumps to the target and subscribers are notified at once; otherwise the
// position eases toward it over subsequent frames.
func (s *Smoother) ScrollTo(pos float64, immediate bool) {
	s.mu.Lock()
	pos = layout.Clamp(pos, 0, s.limit)
	s.target = pos
	if !immediate {
		s.mu.Unlock()
		return
	}
	delta := pos - s.current
	s.current = pos
	if delta != 0 {
		s.direction = sign(delta)
	}
	st := layout.ScrollState{Top: pos, Delta: delta, Direction: s.direction}
	s.mu.Unlock()

	s.sub.Notify(st)
}

// ScrollBy offsets the target by delta, clamped to the scrollable range.
func (s *Smoother) ScrollBy(delta float64) {
	s.mu.Lock()
	target := layout.Clamp(s.target+delta, 0, s.limit)
	s.target = target
	s.mu.Unlock()
}

// Resize recomputes the scrollable range from the document height and
// re-clamps the target. Called on construction and whenever the viewport
// or document geometry changes.
func (s *Smoother) Resize() {
	limit := s.metrics.DocumentHeight() - s.metrics.ViewportSize().Height
	if limit < 0 {
		limit = 0
	}

	s.mu.Lock()
	s.limit = limit
	s.target = layout.Clamp(s.target, 0, limit)
	s.mu.Unlock()
}

// Step advances the smoothed position for one frame. Subscribers are only
// notified when the position actually moved.
func (s *Smoother) Step(f frame.Frame) {
	s.mu.Lock()
	remaining := s.target - s.current
	if remaining == 0 {
		s.mu.Unlock()
		return
	}

	// Exponential approach: close a fixed fraction of the remaining
	// distance per unit time, independent of frame rate.
	factor := 1 - math.Exp(-s.lerp*f.Delta.Seconds())
	delta := remaining * factor
	if math.Abs(remaining-delta) < settleEpsilon {
		delta = remaining
	}
	if delta == 0 {
		s.mu.Unlock()
		return
	}

	s.current += delta
	s.direction = sign(delta)
	st := layout.ScrollState{Top: s.current, Delta: delta, Direction: s.direction}
	s.mu.Unlock()

	s.sub.Notify(st)
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
