// Package signal provides the notification primitives the motion runtime is
// built on: a priority-ordered subscriber list ([Subscribable]) and a typed
// last-value topic ([Topic]).
package signal

import (
	"sort"
	"sync"
)

// Subscription identifies a registered callback for removal.
type Subscription int

type subscriber[T any] struct {
	id       Subscription
	priority int
	fn       func(T)
}

// Subscribable is an ordered callback registry. Callbacks are invoked in
// ascending priority order (lower fires earlier); callbacks sharing a
// priority fire in registration order.
//
// Notify runs callbacks synchronously on the calling goroutine. There is no
// isolation between callbacks: a panicking callback aborts the remaining
// notifications for that dispatch.
type Subscribable[T any] struct {
	mu     sync.Mutex
	subs   []subscriber[T]
	nextID Subscription
}

// NewSubscribable creates an empty subscriber list.
func NewSubscribable[T any]() *Subscribable[T] {
	return &Subscribable[T]{}
}

// Add registers fn at the given priority and returns an unsubscribe
// function along with the subscription identity.
func (s *Subscribable[T]) Add(fn func(T), priority int) (func(), Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	// Insert after the last subscriber with priority <= the new one so
	// equal priorities keep registration order.
	idx := sort.Search(len(s.subs), func(i int) bool {
		return s.subs[i].priority > priority
	})
	s.subs = append(s.subs, subscriber[T]{})
	copy(s.subs[idx+1:], s.subs[idx:])
	s.subs[idx] = subscriber[T]{id: id, priority: priority, fn: fn}

	return func() { s.Remove(id) }, id
}

// Remove unregisters the subscription. Removing an unknown identity is a
// no-op.
func (s *Subscribable[T]) Remove(id Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Notify invokes every live callback with v in priority order.
func (s *Subscribable[T]) Notify(v T) {
	s.mu.Lock()
	if len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	// Copy so callbacks may subscribe or unsubscribe without deadlocking.
	// Removals made during dispatch take effect on the next Notify.
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Len returns the number of registered callbacks.
func (s *Subscribable[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
