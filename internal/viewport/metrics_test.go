package viewport

import (
	"sync"

	"github.com/motifkit/motif/internal/layout"
)

// fakeMetrics is a mutable geometry source for tests.
type fakeMetrics struct {
	mu        sync.Mutex
	viewport  layout.Size
	scrollTop float64
	docHeight float64
	rects     map[string]layout.Rect
}

func newFakeMetrics(viewport layout.Size) *fakeMetrics {
	return &fakeMetrics{
		viewport:  viewport,
		docHeight: viewport.Height,
		rects:     make(map[string]layout.Rect),
	}
}

func (m *fakeMetrics) ViewportSize() layout.Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

func (m *fakeMetrics) ScrollTop() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scrollTop
}

func (m *fakeMetrics) DocumentHeight() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docHeight
}

func (m *fakeMetrics) ElementRect(id string) (layout.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rects[id]
	return r, ok
}

func (m *fakeMetrics) setRect(id string, r layout.Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rects[id] = r
}

func (m *fakeMetrics) setScrollTop(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrollTop = v
}
