// Package layout defines the document-space geometry model shared by the
// motion runtime: rectangles, viewport sizes, scroll state, and the Metrics
// contract through which the runtime reads page geometry.
//
// Motif is headless: instead of querying a live DOM, components read
// geometry through a [Metrics] implementation. The dev server backs Metrics
// with parsed page documents; tests back it with fixed fakes.
package layout

// Rect is an axis-aligned rectangle in document space. Top and Left are
// offsets from the document origin, not the viewport.
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Bottom returns the document-space bottom edge of the rectangle.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Size holds viewport dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// ScrollState is the payload published on every scroll notification.
type ScrollState struct {
	// Top is the current scroll offset from the document origin.
	Top float64
	// Delta is the change in Top since the previous notification.
	Delta float64
	// Direction is +1 when scrolling toward the document end, -1 toward
	// the origin. Carries the previous direction when Delta is zero.
	Direction int
}

// Metrics exposes page geometry to the motion runtime. Implementations must
// be safe for concurrent readers.
type Metrics interface {
	// ViewportSize returns the current viewport dimensions.
	ViewportSize() Size
	// ScrollTop returns the current scroll offset.
	ScrollTop() float64
	// DocumentHeight returns the total scrollable height of the document.
	DocumentHeight() float64
	// ElementRect returns the document-space rectangle for an element,
	// or false if the element is unknown.
	ElementRect(id string) (Rect, bool)
}

// Clamp limits v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Remap projects v from the range [inLo, inHi] onto [outLo, outHi] without
// clamping. The input range must be non-degenerate.
func Remap(v, inLo, inHi, outLo, outHi float64) float64 {
	return outLo + (v-inLo)/(inHi-inLo)*(outHi-outLo)
}
