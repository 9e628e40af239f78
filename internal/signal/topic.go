package signal

import "sync"

// Topic is a typed publish/subscribe channel with last-value semantics. It
// replaces implicit property-interception state sharing with an explicit
// bus: publishers call Publish, consumers register handlers with Subscribe
// and can read the most recent value at any time.
type Topic[T any] struct {
	mu        sync.Mutex
	sub       *Subscribable[T]
	last      T
	published bool
}

// NewTopic creates a topic with no published value.
func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{sub: NewSubscribable[T]()}
}

// Publish stores v as the topic's current value and notifies subscribers.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	t.last = v
	t.published = true
	t.mu.Unlock()

	t.sub.Notify(v)
}

// Subscribe registers a handler and returns an unsubscribe function. If the
// topic already holds a value the handler is invoked with it immediately.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	unsub, _ := t.sub.Add(fn, 0)

	t.mu.Lock()
	published, last := t.published, t.last
	t.mu.Unlock()
	if published {
		fn(last)
	}
	return unsub
}

// Value returns the most recently published value and whether one exists.
func (t *Topic[T]) Value() (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.published
}
