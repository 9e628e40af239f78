package viewport

import (
	"sync"

	"github.com/motifkit/motif/internal/frame"
	"github.com/motifkit/motif/internal/layout"
	"github.com/motifkit/motif/internal/signal"
)

// TriggerPoint selects the viewport reference edge used when computing a
// Track bound: the scroll offset at which the element edge meets the
// viewport's top, center, or bottom.
type TriggerPoint string

const (
	TriggerTop    TriggerPoint = "top"
	TriggerCenter TriggerPoint = "center"
	TriggerBottom TriggerPoint = "bottom"
)

// offset returns the viewport offset, in pixels, for the trigger point.
func (p TriggerPoint) offset(viewportHeight float64) float64 {
	switch p {
	case TriggerCenter:
		return viewportHeight / 2
	case TriggerBottom:
		return viewportHeight
	default:
		return 0
	}
}

// TrackConfig configures a Track tracker.
type TrackConfig struct {
	// Config selects the observer group used for visibility gating.
	Config Config
	// Top and Bottom are the trigger points applied to the element's top
	// and bottom edges when computing scroll bounds.
	Top    TriggerPoint
	Bottom TriggerPoint
	// From and To are the output range the scroll progress is mapped
	// onto. Both zero means [0,1].
	From float64
	To   float64
	// Callback receives the recomputed progress value on every scroll
	// notification while the element is in view.
	Callback func(TrackEvent)
}

// TrackEvent is the payload delivered to a Track callback.
type TrackEvent struct {
	// Value is the scroll progress mapped onto [From,To] and clamped.
	Value float64
	// ScrollTop is the scroll offset the value was computed from.
	ScrollTop float64
}

// Track computes a normalized scroll-progress value for an element between
// two document-space trigger bounds. It embeds [Observe] for visibility
// gating: progress is only recomputed while the element is in view.
// Tracking always starts immediately and never self-destroys.
type Track struct {
	*Observe

	metrics layout.Metrics
	cfg     TrackConfig

	trackMu     sync.Mutex
	boundTop    float64
	boundBottom float64
	value       float64

	unsubScroll func()
	unsubResize func()
}

// NewTrack creates a progress tracker for the element id, wired to scroll
// and resize notifications.
func NewTrack(
	manager *Manager,
	metrics layout.Metrics,
	scroll *signal.Subscribable[layout.ScrollState],
	resize *frame.Resize,
	id string,
	cfg TrackConfig,
) *Track {
	if cfg.From == 0 && cfg.To == 0 {
		cfg.To = 1
	}
	if cfg.Top == "" {
		cfg.Top = TriggerTop
	}
	if cfg.Bottom == "" {
		cfg.Bottom = TriggerBottom
	}

	t := &Track{
		metrics: metrics,
		cfg:     cfg,
		value:   cfg.From,
	}
	t.Observe = NewObserve(manager, id, ObserveConfig{
		Config:    cfg.Config,
		AutoStart: true,
	})
	t.computeBounds()

	t.unsubScroll, _ = scroll.Add(t.onScroll, 0)
	t.unsubResize, _ = resize.Sizes().Add(func(layout.Size) {
		t.computeBounds()
	}, 0)

	return t
}

// Value returns the last computed progress value.
func (t *Track) Value() float64 {
	t.trackMu.Lock()
	defer t.trackMu.Unlock()
	return t.value
}

// Bounds returns the current document-space trigger bounds.
func (t *Track) Bounds() (top, bottom float64) {
	t.trackMu.Lock()
	defer t.trackMu.Unlock()
	return t.boundTop, t.boundBottom
}

// Destroy releases the scroll and resize subscriptions before delegating to
// the embedded Observe.
func (t *Track) Destroy() {
	if t.unsubScroll != nil {
		t.unsubScroll()
	}
	if t.unsubResize != nil {
		t.unsubResize()
	}
	t.Observe.Destroy()
}

// computeBounds derives the scroll offsets at which progress is 0 and 1:
// the element's top edge meeting the Top trigger point, and its bottom edge
// meeting the Bottom trigger point.
func (t *Track) computeBounds() {
	rect, ok := t.metrics.ElementRect(t.ElementID())
	if !ok {
		return
	}
	vh := t.metrics.ViewportSize().Height

	t.trackMu.Lock()
	t.boundTop = rect.Top - t.cfg.Top.offset(vh)
	t.boundBottom = rect.Bottom() - t.cfg.Bottom.offset(vh)
	t.trackMu.Unlock()
}

func (t *Track) onScroll(st layout.ScrollState) {
	if !t.IsIn() {
		return
	}

	t.trackMu.Lock()
	var v float64
	if t.boundTop == t.boundBottom {
		// Degenerate span: avoid dividing by zero.
		v = t.cfg.From
	} else {
		v = layout.Clamp(
			layout.Remap(st.Top, t.boundTop, t.boundBottom, t.cfg.From, t.cfg.To),
			t.cfg.From, t.cfg.To,
		)
	}
	t.value = v
	fn := t.cfg.Callback
	t.trackMu.Unlock()

	if fn != nil {
		fn(TrackEvent{Value: v, ScrollTop: st.Top})
	}
}
