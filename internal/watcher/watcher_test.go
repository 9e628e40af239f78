package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motifkit/motif/internal/logging"
)

type eventSink struct {
	mu      sync.Mutex
	batches [][]ChangeEvent
}

func (s *eventSink) handle(events []ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, events)
}

func (s *eventSink) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *eventSink) paths() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make(map[string]bool)
	for _, batch := range s.batches {
		for _, ev := range batch {
			paths[ev.Path] = true
		}
	}
	return paths
}

func startWatcher(t *testing.T, dir string, filters ...Filter) (*FileWatcher, *eventSink) {
	t.Helper()
	w, err := New(30*time.Millisecond, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	for _, f := range filters {
		w.AddFilter(f)
	}
	sink := &eventSink{}
	w.AddHandler(sink.handle)
	require.NoError(t, w.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	return w, sink
}

func TestFileWatcher_DebouncesRapidEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "home.html")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	_, sink := startWatcher(t, dir)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('0' + i)}, 0o644))
		time.Sleep(2 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return sink.batchCount() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, sink.batchCount())

	sink.mu.Lock()
	batch := sink.batches[0]
	sink.mu.Unlock()
	require.Len(t, batch, 1)
	assert.Equal(t, path, batch[0].Path)
}

func TestFileWatcher_FiltersRejectPaths(t *testing.T) {
	dir := t.TempDir()
	_, sink := startWatcher(t, dir, PageFilter)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.html"), []byte("<html>"), 0o644))

	assert.Eventually(t, func() bool {
		return sink.paths()[filepath.Join(dir, "home.html")]
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, sink.paths()[filepath.Join(dir, "site.css")])
}

func TestFileWatcher_DistinctPathsBatchedTogether(t *testing.T) {
	dir := t.TempDir()
	_, sink := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte("b"), 0o644))

	assert.Eventually(t, func() bool {
		p := sink.paths()
		return p[filepath.Join(dir, "a.html")] && p[filepath.Join(dir, "b.html")]
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFilters(t *testing.T) {
	assert.True(t, PageFilter("pages/home.html"))
	assert.False(t, PageFilter("pages/app.js"))

	assert.True(t, AssetFilter("static/site.css"))
	assert.True(t, AssetFilter("static/logo.SVG"))
	assert.False(t, AssetFilter("static/readme.md"))

	combined := AnyOf(PageFilter, AssetFilter)
	assert.True(t, combined("x.html"))
	assert.True(t, combined("x.css"))
	assert.False(t, combined("x.md"))

	assert.True(t, NoHidden("pages/home.html"))
	assert.False(t, NoHidden("pages/.cache/home.html"))
	assert.False(t, NoHidden(".git/config"))
}
