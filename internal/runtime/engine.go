// Package runtime assembles the motion engine: the frame loop, resize and
// scroll sources, viewport observation, the tween scheduler, and the
// lifecycle controller, wired together as explicitly constructed services.
package runtime

import (
	"context"
	"time"

	"github.com/motifkit/motif/internal/frame"
	"github.com/motifkit/motif/internal/layout"
	"github.com/motifkit/motif/internal/lifecycle"
	"github.com/motifkit/motif/internal/logging"
	"github.com/motifkit/motif/internal/page"
	"github.com/motifkit/motif/internal/scroll"
	"github.com/motifkit/motif/internal/signal"
	"github.com/motifkit/motif/internal/tween"
	"github.com/motifkit/motif/internal/viewport"
)

// geometryPriority orders the engine's own scroll/resize handlers before
// component subscribers, so geometry and intersection state are current by
// the time component callbacks run.
const geometryPriority = -100

// DefaultFrameInterval approximates a 60fps tick.
const DefaultFrameInterval = 16 * time.Millisecond

// Options configures a new engine.
type Options struct {
	// Viewport is the initial viewport size.
	Viewport layout.Size
	// ScrollLerp is the smoothing rate handed to the scroller; zero uses
	// the scroller default.
	ScrollLerp float64
	// ResizeDelay is the resize debounce window; zero uses the default.
	ResizeDelay time.Duration
	// TimeScale slows or speeds every frame consumer relative to the real
	// clock; zero or 1 runs at real time.
	TimeScale float64
	// Clock drives the frame loop; nil uses the system clock.
	Clock frame.Clock
	// Logger receives runtime logs; nil discards them.
	Logger logging.Logger
}

// Engine owns one page view and every motion service operating on it.
type Engine struct {
	Loop       *frame.Loop
	Resize     *frame.Resize
	View       *page.View
	Smoother   *scroll.Smoother
	Manager    *viewport.Manager
	Tweens     *tween.Scheduler
	Lifecycle  *lifecycle.Registry
	Binder     *lifecycle.Binder
	Controller *lifecycle.Controller

	log logging.Logger
}

// New wires an engine from options.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}

	view := page.NewView(nil, opts.Viewport)
	loop := frame.NewLoop(opts.Clock)
	if opts.TimeScale > 0 {
		loop.SetTimeScale(opts.TimeScale)
	}
	resize := frame.NewResize(opts.Viewport, opts.ResizeDelay)
	smoother := scroll.NewSmoother(view, opts.ScrollLerp)
	manager := viewport.NewManager(view)
	tweens := tween.NewScheduler(loop)
	reg := lifecycle.NewRegistry()
	binder := lifecycle.NewBinder()

	e := &Engine{
		Loop:      loop,
		Resize:    resize,
		View:      view,
		Smoother:  smoother,
		Manager:   manager,
		Tweens:    tweens,
		Lifecycle: reg,
		Binder:    binder,
		log:       log.WithComponent("runtime"),
	}
	e.Controller = lifecycle.NewController(
		reg, binder, view, smoother, manager, resize, log.WithComponent("lifecycle"))

	// The smoother eases toward its target on every frame.
	loop.Ticks().Add(smoother.Step, geometryPriority)

	// Geometry bookkeeping runs ahead of component subscribers.
	smoother.Positions().Add(func(st layout.ScrollState) {
		view.SetScrollTop(st.Top)
		manager.Evaluate()
	}, geometryPriority)
	resize.Sizes().Add(func(size layout.Size) {
		view.SetSize(size)
		smoother.Resize()
		manager.Evaluate()
	}, geometryPriority)

	return e
}

// Run drives the frame loop at the given interval until ctx is cancelled.
// A non-positive interval uses DefaultFrameInterval.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	e.Loop.Run(ctx, interval)
}

// Close releases the tween scheduler's frame subscription and stops
// in-flight tweens.
func (e *Engine) Close() {
	e.Tweens.Close()
}

// SetViewport feeds a raw viewport dimension change into the debounced
// resize source.
func (e *Engine) SetViewport(size layout.Size) {
	e.Resize.Set(size)
}

// Scroll returns the subscriber list for smoothed scroll notifications.
func (e *Engine) Scroll() *signal.Subscribable[layout.ScrollState] {
	return e.Smoother.Positions()
}

// Observe creates a visibility tracker for an element on the current page.
func (e *Engine) Observe(id string, cfg viewport.ObserveConfig) *viewport.Observe {
	return viewport.NewObserve(e.Manager, id, cfg)
}

// Track creates a scroll-progress tracker for an element on the current
// page.
func (e *Engine) Track(id string, cfg viewport.TrackConfig) *viewport.Track {
	return viewport.NewTrack(e.Manager, e.View, e.Smoother.Positions(), e.Resize, id, cfg)
}

// Load runs the initial Discover and Enter phases for the first page.
func (e *Engine) Load(ctx context.Context, doc *page.Document) *lifecycle.Report {
	return e.Controller.Load(ctx, doc)
}

// Navigate transitions to doc, serialized behind any in-flight navigation.
func (e *Engine) Navigate(ctx context.Context, doc *page.Document, trigger string) *lifecycle.Report {
	return e.Controller.Navigate(ctx, doc, trigger)
}
