package tween

import (
	"sync"
	"time"

	"github.com/motifkit/motif/internal/frame"
)

// State describes where a tween is in its lifecycle.
type State int

const (
	// StateIdle means the tween has not been scheduled yet.
	StateIdle State = iota
	// StateRunning means the tween is being stepped by a scheduler.
	StateRunning
	// StateDone means the tween reached its end value.
	StateDone
	// StateStopped means the tween was cancelled before completing.
	StateStopped
)

// Tween animates a float64 from From to To over Duration, applying an
// easing curve. The zero duration completes on the first step.
//
// Await completion through Done: the channel closes when the tween settles,
// whether it completed or was stopped.
type Tween struct {
	from     float64
	to       float64
	duration time.Duration
	curve    Curve
	onUpdate func(float64)

	mu      sync.Mutex
	elapsed time.Duration
	value   float64
	state   State
	done    chan struct{}
}

// Option configures a tween.
type Option func(*Tween)

// WithCurve sets the easing curve. The default is Expo.
func WithCurve(c Curve) Option {
	return func(t *Tween) { t.curve = c }
}

// WithOnUpdate registers a callback invoked with the eased value on every
// step.
func WithOnUpdate(fn func(float64)) Option {
	return func(t *Tween) { t.onUpdate = fn }
}

// New creates an idle tween.
func New(from, to float64, duration time.Duration, opts ...Option) *Tween {
	t := &Tween{
		from:     from,
		to:       to,
		duration: duration,
		curve:    Expo,
		value:    from,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Value returns the current eased value.
func (t *Tween) Value() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// State returns the tween's lifecycle state.
func (t *Tween) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done returns a channel closed when the tween settles (completes or is
// stopped).
func (t *Tween) Done() <-chan struct{} {
	return t.done
}

// Stop cancels the tween at its current value. Stopping a settled tween is
// a no-op.
func (t *Tween) Stop() {
	t.mu.Lock()
	if t.state == StateDone || t.state == StateStopped {
		t.mu.Unlock()
		return
	}
	t.state = StateStopped
	close(t.done)
	t.mu.Unlock()
}

// step advances the tween by the frame delta. It reports whether the tween
// has settled and should be dropped by the scheduler.
func (t *Tween) step(f frame.Frame) bool {
	t.mu.Lock()
	if t.state == StateDone || t.state == StateStopped {
		t.mu.Unlock()
		return true
	}
	t.state = StateRunning
	t.elapsed += f.Delta

	var progress float64
	if t.duration <= 0 {
		progress = 1
	} else {
		progress = float64(t.elapsed) / float64(t.duration)
		if progress > 1 {
			progress = 1
		}
	}

	t.value = t.from + (t.to-t.from)*t.curve(progress)
	finished := progress >= 1
	if finished {
		t.state = StateDone
		close(t.done)
	}
	fn := t.onUpdate
	value := t.value
	t.mu.Unlock()

	if fn != nil {
		fn(value)
	}
	return finished
}

// Scheduler steps active tweens on every frame tick and drops them once
// they settle.
type Scheduler struct {
	mu     sync.Mutex
	active []*Tween
	unsub  func()
}

// NewScheduler creates a scheduler subscribed to the loop's ticks.
func NewScheduler(loop *frame.Loop) *Scheduler {
	s := &Scheduler{}
	s.unsub, _ = loop.Ticks().Add(s.step, 0)
	return s
}

// Start schedules the tween. Starting an already-settled tween is a no-op.
func (s *Scheduler) Start(t *Tween) *Tween {
	s.mu.Lock()
	s.active = append(s.active, t)
	s.mu.Unlock()
	return t
}

// Animate creates, schedules, and returns a tween in one call.
func (s *Scheduler) Animate(from, to float64, duration time.Duration, opts ...Option) *Tween {
	return s.Start(New(from, to, duration, opts...))
}

// ActiveCount returns the number of unsettled tweens.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Close detaches the scheduler from the frame loop and stops all active
// tweens.
func (s *Scheduler) Close() {
	if s.unsub != nil {
		s.unsub()
	}
	s.mu.Lock()
	active := s.active
	s.active = nil
	s.mu.Unlock()

	for _, t := range active {
		t.Stop()
	}
}

func (s *Scheduler) step(f frame.Frame) {
	s.mu.Lock()
	active := make([]*Tween, len(s.active))
	copy(active, s.active)
	s.mu.Unlock()

	var settled []*Tween
	for _, t := range active {
		if t.step(f) {
			settled = append(settled, t)
		}
	}
	if len(settled) == 0 {
		return
	}

	s.mu.Lock()
	remaining := s.active[:0]
	for _, t := range s.active {
		drop := false
		for _, d := range settled {
			if t == d {
				drop = true
				break
			}
		}
		if !drop {
			remaining = append(remaining, t)
		}
	}
	s.active = remaining
	s.mu.Unlock()
}
