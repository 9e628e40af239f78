package page

import (
	"sync"

	"github.com/motifkit/motif/internal/layout"
)

// View is the runtime's window onto a document: it pairs the current
// document with viewport dimensions and a scroll offset, implementing
// [layout.Metrics] for the motion components. The document can be swapped
// on navigation without re-wiring consumers.
type View struct {
	mu        sync.RWMutex
	doc       *Document
	size      layout.Size
	scrollTop float64
}

// NewView creates a view over doc with the given viewport size. A nil doc
// is allowed until the first navigation.
func NewView(doc *Document, size layout.Size) *View {
	return &View{doc: doc, size: size}
}

// Document returns the current document, which may be nil.
func (v *View) Document() *Document {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.doc
}

// SetDocument swaps the viewed document, used on page navigation.
func (v *View) SetDocument(doc *Document) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.doc = doc
}

// SetSize updates the viewport dimensions.
func (v *View) SetSize(size layout.Size) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.size = size
}

// SetScrollTop records the current scroll offset.
func (v *View) SetScrollTop(top float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTop = top
}

// ViewportSize implements layout.Metrics.
func (v *View) ViewportSize() layout.Size {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.size
}

// ScrollTop implements layout.Metrics.
func (v *View) ScrollTop() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scrollTop
}

// DocumentHeight implements layout.Metrics. A view without a document
// reports the viewport height.
func (v *View) DocumentHeight() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.doc == nil || v.doc.Height < v.size.Height {
		return v.size.Height
	}
	return v.doc.Height
}

// ElementRect implements layout.Metrics.
func (v *View) ElementRect(id string) (layout.Rect, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.doc == nil {
		return layout.Rect{}, false
	}
	el, ok := v.doc.ElementByID(id)
	if !ok {
		return layout.Rect{}, false
	}
	return el.Rect, true
}
