package frame

import (
	"sync"
	"time"

	"github.com/motifkit/motif/internal/layout"
	"github.com/motifkit/motif/internal/signal"
)

// DefaultResizeDelay is the settle window applied to raw resize events.
const DefaultResizeDelay = 100 * time.Millisecond

// Resize debounces raw viewport dimension changes and notifies subscribers
// with the settled size. Rapid events within the delay window collapse into
// a single notification carrying the final dimensions; a settle that leaves
// the dimensions unchanged from the last notification is suppressed.
type Resize struct {
	sub   *signal.Subscribable[layout.Size]
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending layout.Size
	current layout.Size
}

// NewResize creates a resize source seeded with the initial viewport size.
// A non-positive delay falls back to DefaultResizeDelay.
func NewResize(initial layout.Size, delay time.Duration) *Resize {
	if delay <= 0 {
		delay = DefaultResizeDelay
	}
	return &Resize{
		sub:     signal.NewSubscribable[layout.Size](),
		delay:   delay,
		pending: initial,
		current: initial,
	}
}

// Sizes returns the subscriber list notified with settled dimensions.
func (r *Resize) Sizes() *signal.Subscribable[layout.Size] {
	return r.sub
}

// Current returns the most recently settled viewport size.
func (r *Resize) Current() layout.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Set records a raw resize event and restarts the settle timer.
func (r *Resize) Set(size layout.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = size
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, r.settle)
}

// Flush settles immediately, bypassing any pending delay. Used by the
// transition controller when entering a page.
func (r *Resize) Flush() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()
	r.settle()
}

func (r *Resize) settle() {
	r.mu.Lock()
	size := r.pending
	changed := size != r.current
	r.current = size
	r.mu.Unlock()

	if changed {
		r.sub.Notify(size)
	}
}
