// Package watcher watches page and asset files for changes, debouncing
// rapid edits into batched change notifications for the scanner and the
// live-reload hub.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/motifkit/motif/internal/logging"
)

// EventType represents the type of file change.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangeEvent represents one debounced file change.
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
}

// Filter decides whether a path is interesting to the watcher.
type Filter func(path string) bool

// Handler receives a debounced batch of change events.
type Handler func(events []ChangeEvent)

// FileWatcher watches directories recursively and delivers debounced,
// filtered change batches to its handlers.
type FileWatcher struct {
	fs    *fsnotify.Watcher
	delay time.Duration
	log   logging.Logger

	mu       sync.Mutex
	filters  []Filter
	handlers []Handler
	timer    *time.Timer
	pending  map[string]ChangeEvent
}

// New creates a file watcher with the given debounce delay.
func New(delay time.Duration, log logging.Logger) (*FileWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		fs:      fs,
		delay:   delay,
		log:     log.WithComponent("watcher"),
		pending: make(map[string]ChangeEvent),
	}, nil
}

// AddFilter adds a path filter. All filters must accept a path for its
// events to be delivered.
func (w *FileWatcher) AddFilter(f Filter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filters = append(w.filters, f)
}

// AddHandler adds a change handler.
func (w *FileWatcher) AddHandler(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// AddRecursive watches root and every subdirectory beneath it.
func (w *FileWatcher) AddRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

// Start begins delivering events until ctx is cancelled.
func (w *FileWatcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop closes the underlying watcher and halts any pending flush.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *FileWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.record(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, err, "watch error")
		}
	}
}

func (w *FileWatcher) record(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, filter := range w.filters {
		if !filter(event.Name) {
			return
		}
	}

	change := ChangeEvent{Path: event.Name, Type: eventType(event.Op)}
	if info, err := os.Stat(event.Name); err == nil {
		change.ModTime = info.ModTime()

		// New directories need to be picked up for recursive watching.
		if info.IsDir() {
			if event.Op&fsnotify.Create != 0 {
				_ = w.fs.Add(event.Name)
			}
			return
		}
	}

	// Later events for the same path win; the batch carries the final
	// state of each file.
	w.pending[event.Name] = change

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *FileWatcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	events := make([]ChangeEvent, 0, len(w.pending))
	for _, ev := range w.pending {
		events = append(events, ev)
	}
	w.pending = make(map[string]ChangeEvent)
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, handler := range handlers {
		handler(events)
	}
}

func eventType(op fsnotify.Op) EventType {
	switch {
	case op&fsnotify.Create != 0:
		return EventTypeCreated
	case op&fsnotify.Remove != 0:
		return EventTypeDeleted
	case op&fsnotify.Rename != 0:
		return EventTypeRenamed
	default:
		return EventTypeModified
	}
}

// PageFilter accepts HTML page files.
func PageFilter(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// AssetFilter accepts stylesheet, script, and image assets.
func AssetFilter(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css", ".js", ".svg", ".png", ".jpg", ".jpeg", ".webp", ".woff2":
		return true
	default:
		return false
	}
}

// AnyOf accepts a path when any of the given filters does.
func AnyOf(filters ...Filter) Filter {
	return func(path string) bool {
		for _, f := range filters {
			if f(path) {
				return true
			}
		}
		return false
	}
}

// NoHidden rejects dotfiles and paths inside dot directories.
func NoHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return false
		}
	}
	return true
}
