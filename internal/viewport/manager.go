// Package viewport implements headless viewport-visibility tracking: a
// [Manager] that groups watched elements by observer configuration, an
// [Observe] per-element visibility tracker, and a [Track] scroll-progress
// tracker.
package viewport

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/motifkit/motif/internal/layout"
)

// Config describes how an element's intersection with the viewport is
// evaluated. It mirrors intersection-observer semantics: the viewport is
// expanded by the root margin, and callbacks fire when the visible ratio
// crosses a threshold.
type Config struct {
	// MarginTop and MarginBottom expand the viewport band, in pixels.
	// Positive values grow the band beyond the viewport edges.
	MarginTop    float64
	MarginBottom float64
	// Thresholds are visible-ratio boundaries in [0,1] whose crossing
	// triggers a callback. Empty means {0}.
	Thresholds []float64
}

// key returns a stable identity for the configuration. Threshold order is
// normalized so permutations share a group.
func (c Config) key() uint64 {
	ths := append([]float64(nil), c.Thresholds...)
	if len(ths) == 0 {
		ths = []float64{0}
	}
	sort.Float64s(ths)

	h := xxhash.New()
	fmt.Fprintf(h, "mt:%g;mb:%g;", c.MarginTop, c.MarginBottom)
	for _, th := range ths {
		fmt.Fprintf(h, "t:%g;", th)
	}
	return h.Sum64()
}

// Entry is the payload delivered to intersection callbacks.
type Entry struct {
	// ElementID names the observed element.
	ElementID string
	// Rect is the element's document-space rectangle.
	Rect layout.Rect
	// Top is the element's viewport-relative top offset.
	Top float64
	// Ratio is the fraction of the element inside the (margin-expanded)
	// viewport band, in [0,1].
	Ratio float64
	// Intersecting reports whether any part of the element is inside the
	// band.
	Intersecting bool
}

// Callback receives intersection entries for one element.
type Callback func(Entry)

type watchState struct {
	fn           Callback
	lastRatio    float64
	intersecting bool
	evaluated    bool
}

type group struct {
	cfg        Config
	thresholds []float64
	elements   mapset.Set[string]
	watches    map[string]*watchState
}

// Manager groups watched elements by configuration so each distinct
// configuration is evaluated in a single pass. An element belongs to at
// most one group at a time; removing a group's last element disposes the
// group.
type Manager struct {
	metrics layout.Metrics

	mu        sync.Mutex
	groups    map[uint64]*group
	elementOf map[string]uint64
}

// NewManager creates a manager reading geometry from metrics.
func NewManager(metrics layout.Metrics) *Manager {
	return &Manager{
		metrics:   metrics,
		groups:    make(map[uint64]*group),
		elementOf: make(map[string]uint64),
	}
}

// AddElement registers an element under the given configuration and
// evaluates it immediately, mirroring the initial intersection callback of
// native observers. Re-adding a tracked element moves it to the new
// configuration's group.
func (m *Manager) AddElement(id string, cfg Config, fn Callback) {
	m.mu.Lock()
	if prev, ok := m.elementOf[id]; ok {
		m.detachLocked(id, prev)
	}

	k := cfg.key()
	g, ok := m.groups[k]
	if !ok {
		ths := append([]float64(nil), cfg.Thresholds...)
		if len(ths) == 0 {
			ths = []float64{0}
		}
		sort.Float64s(ths)
		g = &group{
			cfg:        cfg,
			thresholds: ths,
			elements:   mapset.NewSet[string](),
			watches:    make(map[string]*watchState),
		}
		m.groups[k] = g
	}
	g.elements.Add(id)
	g.watches[id] = &watchState{fn: fn}
	m.elementOf[id] = k
	m.mu.Unlock()

	m.evaluateElement(g, id, true)
}

// RemoveElement stops tracking an element. Unknown elements are a no-op.
func (m *Manager) RemoveElement(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, ok := m.elementOf[id]
	if !ok {
		return
	}
	m.detachLocked(id, k)
}

func (m *Manager) detachLocked(id string, key uint64) {
	delete(m.elementOf, id)
	g, ok := m.groups[key]
	if !ok {
		return
	}
	g.elements.Remove(id)
	delete(g.watches, id)
	if g.elements.Cardinality() == 0 {
		delete(m.groups, key)
	}
}

// GroupCount returns the number of live observer groups.
func (m *Manager) GroupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groups)
}

// Evaluate recomputes intersection state for every tracked element and
// dispatches callbacks for elements whose state crossed a threshold. The
// runtime calls this on every scroll and resize notification.
func (m *Manager) Evaluate() {
	m.mu.Lock()
	groups := make([]*group, 0, len(m.groups))
	for _, g := range m.groups {
		groups = append(groups, g)
	}
	m.mu.Unlock()

	for _, g := range groups {
		for _, id := range g.elements.ToSlice() {
			m.evaluateElement(g, id, false)
		}
	}
}

// evaluateElement computes the entry for one element and dispatches its
// callback when forced or when a threshold boundary was crossed.
func (m *Manager) evaluateElement(g *group, id string, force bool) {
	rect, ok := m.metrics.ElementRect(id)
	if !ok {
		return
	}

	scrollTop := m.metrics.ScrollTop()
	vh := m.metrics.ViewportSize().Height

	bandTop := -g.cfg.MarginTop
	bandBottom := vh + g.cfg.MarginBottom

	top := rect.Top - scrollTop
	bottom := top + rect.Height

	overlap := min(bottom, bandBottom) - max(top, bandTop)
	// Zero-height elements intersect while touching the band.
	intersecting := overlap > 0 || (overlap == 0 && rect.Height <= 0)

	var ratio float64
	switch {
	case !intersecting:
		ratio = 0
	case rect.Height <= 0:
		ratio = 1
	default:
		ratio = layout.Clamp(overlap/rect.Height, 0, 1)
	}

	m.mu.Lock()
	st, live := g.watches[id]
	if !live {
		m.mu.Unlock()
		return
	}
	fire := force || !st.evaluated ||
		intersecting != st.intersecting ||
		crossedThreshold(g.thresholds, st.lastRatio, ratio)
	st.lastRatio = ratio
	st.intersecting = intersecting
	st.evaluated = true
	fn := st.fn
	m.mu.Unlock()

	if fire {
		fn(Entry{
			ElementID:    id,
			Rect:         rect,
			Top:          top,
			Ratio:        ratio,
			Intersecting: intersecting,
		})
	}
}

// crossedThreshold reports whether moving from a to b passes any threshold
// boundary.
func crossedThreshold(thresholds []float64, a, b float64) bool {
	return bucketOf(thresholds, a) != bucketOf(thresholds, b)
}

// bucketOf returns the index of the highest threshold <= ratio, or -1.
func bucketOf(thresholds []float64, ratio float64) int {
	bucket := -1
	for i, th := range thresholds {
		if ratio >= th {
			bucket = i
		}
	}
	return bucket
}
