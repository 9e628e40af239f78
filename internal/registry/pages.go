// Package registry tracks the pages discovered by the scanner and
// broadcasts change events to interested consumers (the dev server's live
// reload, the list command).
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/motifkit/motif/internal/page"
)

// PageInfo holds metadata about a scanned page.
type PageInfo struct {
	Name     string
	Path     string
	Title    string
	Modules  []string
	Elements int
	Height   float64
	Hash     uint64
	LastMod  time.Time

	// Doc is the parsed document backing this entry.
	Doc *page.Document
}

// EventType represents the type of page event.
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// PageEvent represents a change in the page registry.
type PageEvent struct {
	Type      EventType
	Page      *PageInfo
	Timestamp time.Time
}

// PageRegistry manages all discovered pages.
type PageRegistry struct {
	pages    map[string]*PageInfo
	mutex    sync.RWMutex
	watchers []chan PageEvent
}

// NewPageRegistry creates an empty page registry.
func NewPageRegistry() *PageRegistry {
	return &PageRegistry{
		pages: make(map[string]*PageInfo),
	}
}

// Register adds or updates a page. An unchanged hash on an existing entry
// suppresses the event so watchers only hear about real changes.
func (r *PageRegistry) Register(info *PageInfo) {
	r.mutex.Lock()

	eventType := EventTypeAdded
	if existing, exists := r.pages[info.Name]; exists {
		if existing.Hash == info.Hash {
			r.pages[info.Name] = info
			r.mutex.Unlock()
			return
		}
		eventType = EventTypeUpdated
	}
	r.pages[info.Name] = info
	r.mutex.Unlock()

	r.broadcast(PageEvent{Type: eventType, Page: info, Timestamp: time.Now()})
}

// Get retrieves a page by name.
func (r *PageRegistry) Get(name string) (*PageInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	info, exists := r.pages[name]
	return info, exists
}

// All returns the registered pages sorted by name.
func (r *PageRegistry) All() []*PageInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*PageInfo, 0, len(r.pages))
	for _, info := range r.pages {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Remove removes a page from the registry.
func (r *PageRegistry) Remove(name string) {
	r.mutex.Lock()
	info, exists := r.pages[name]
	if !exists {
		r.mutex.Unlock()
		return
	}
	delete(r.pages, name)
	r.mutex.Unlock()

	r.broadcast(PageEvent{Type: EventTypeRemoved, Page: info, Timestamp: time.Now()})
}

// Count returns the number of registered pages.
func (r *PageRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.pages)
}

// Watch returns a channel that receives page events.
func (r *PageRegistry) Watch() <-chan PageEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan PageEvent, 64)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it.
func (r *PageRegistry) UnWatch(ch <-chan PageEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

func (r *PageRegistry) broadcast(event PageEvent) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Slow watcher: drop rather than block the scanner.
		}
	}
}
