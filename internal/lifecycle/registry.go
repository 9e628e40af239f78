// Package lifecycle implements the page-transition core: per-navigation
// callback registries, the settle join that runs transition phases, the
// module binder, and the controller orchestrating Leave, Discover, and
// Enter around each navigation.
package lifecycle

import (
	"context"
	"sync"
)

// Hook is a synchronous lifecycle callback (mount, destroy).
type Hook func()

// PhaseFunc is an asynchronous transition callback (page-in, page-out). It
// runs concurrently with its siblings and reports completion through its
// return value.
type PhaseFunc func(ctx context.Context) error

// phaseEntry pairs a phase callback with its registration metadata.
type phaseEntry struct {
	name    string
	element string
	fn      PhaseFunc
}

// hookEntry pairs a synchronous hook with its name.
type hookEntry struct {
	name string
	fn   Hook
}

// PhaseOption configures a page-in or page-out registration.
type PhaseOption func(*phaseEntry)

// WithName labels the registration in phase results and logs.
func WithName(name string) PhaseOption {
	return func(e *phaseEntry) { e.name = name }
}

// WithElement guards a page-out callback with an element: at dispatch time
// the callback only runs if the element currently intersects the viewport,
// and resolves immediately otherwise.
func WithElement(id string) PhaseOption {
	return func(e *phaseEntry) { e.element = id }
}

// Registry collects the lifecycle callbacks registered by the current
// page's components. Each list is single-use: the controller drains it when
// the corresponding phase runs, and components must re-register on the next
// page entry.
type Registry struct {
	mu      sync.Mutex
	mount   []hookEntry
	destroy []hookEntry
	pageIn  []phaseEntry
	pageOut []phaseEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// OnMount registers a hook run synchronously after the enter phase's
// page-in callbacks settle.
func (r *Registry) OnMount(name string, fn Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mount = append(r.mount, hookEntry{name: name, fn: fn})
}

// OnDestroy registers a hook run synchronously after the leave phase's
// page-out callbacks settle. Components release their subscriptions and
// observers here.
func (r *Registry) OnDestroy(name string, fn Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroy = append(r.destroy, hookEntry{name: name, fn: fn})
}

// OnPageIn registers an entrance animation run concurrently with its
// siblings during the enter phase.
func (r *Registry) OnPageIn(fn PhaseFunc, opts ...PhaseOption) {
	entry := phaseEntry{fn: fn}
	for _, opt := range opts {
		opt(&entry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pageIn = append(r.pageIn, entry)
}

// OnPageOut registers an exit animation run concurrently with its siblings
// during the leave phase.
func (r *Registry) OnPageOut(fn PhaseFunc, opts ...PhaseOption) {
	entry := phaseEntry{fn: fn}
	for _, opt := range opts {
		opt(&entry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pageOut = append(r.pageOut, entry)
}

// Counts returns the number of registered callbacks per list.
func (r *Registry) Counts() (mount, destroy, pageIn, pageOut int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mount), len(r.destroy), len(r.pageIn), len(r.pageOut)
}

// drainLeave removes and returns the page-out and destroy lists.
func (r *Registry) drainLeave() (pageOut []phaseEntry, destroy []hookEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pageOut, r.pageOut = r.pageOut, nil
	destroy, r.destroy = r.destroy, nil
	return pageOut, destroy
}

// drainEnter removes and returns the page-in and mount lists.
func (r *Registry) drainEnter() (pageIn []phaseEntry, mount []hookEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pageIn, r.pageIn = r.pageIn, nil
	mount, r.mount = r.mount, nil
	return pageIn, mount
}
