package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/motifkit/motif/internal/page"
)

// Scroller is the controller's view of the smooth-scroll engine.
type Scroller interface {
	// ScrollTo moves to a position; immediate skips the easing.
	ScrollTo(pos float64, immediate bool)
	// Resize recomputes the scrollable range.
	Resize()
}

// Evaluator recomputes viewport intersection state on demand.
type Evaluator interface {
	Evaluate()
}

// Resizer settles any pending viewport dimension change immediately.
type Resizer interface {
	Flush()
}

// Logger is the subset of the logging interface the controller needs.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...any)
	Info(ctx context.Context, msg string, fields ...any)
	Warn(ctx context.Context, err error, msg string, fields ...any)
}

// Navigation identifies one page transition.
type Navigation struct {
	ID      uuid.UUID
	From    string
	To      string
	Trigger string
}

// Report aggregates the outcome of one navigation's phases.
type Report struct {
	Navigation Navigation
	// Leave holds the settled page-out results; empty on initial load.
	Leave []Result
	// BindErrors holds per-element discovery failures.
	BindErrors []error
	// Enter holds the settled page-in results.
	Enter []Result
	// Duration is the navigation's total wall time.
	Duration time.Duration
}

type pendingNav struct {
	doc     *page.Document
	trigger string
}

// Controller orchestrates the transition phases around each navigation:
// Leave (page-out join, destroy hooks, scroll reset), Discover (module
// binding on the target document), Enter (layout refresh, page-in join,
// mount hooks). The initial load runs Discover and Enter only.
//
// Navigations are serialized: one arriving while another is in flight is
// queued, and only the most recent queued navigation runs once the current
// one settles. Intermediate requests are dropped with a logged notice.
type Controller struct {
	registry *Registry
	binder   *Binder
	view     *page.View
	scroller Scroller
	observer Evaluator
	resizer  Resizer
	log      Logger

	mu       sync.Mutex
	inflight bool
	queued   *pendingNav
}

// NewController wires the transition controller to its services.
func NewController(
	registry *Registry,
	binder *Binder,
	view *page.View,
	scroller Scroller,
	observer Evaluator,
	resizer Resizer,
	log Logger,
) *Controller {
	return &Controller{
		registry: registry,
		binder:   binder,
		view:     view,
		scroller: scroller,
		observer: observer,
		resizer:  resizer,
		log:      log,
	}
}

// Registry returns the lifecycle registry the controller drains.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Load runs the initial Discover and Enter phases for the first page. There
// is no Leave phase on first load.
func (c *Controller) Load(ctx context.Context, doc *page.Document) *Report {
	return c.Navigate(ctx, doc, "load")
}

// Navigate transitions from the current document to doc. It returns the
// report for the navigation it ran, or nil if this request was queued
// behind an in-flight navigation (in which case its eventual report is
// logged, not returned).
func (c *Controller) Navigate(ctx context.Context, doc *page.Document, trigger string) *Report {
	c.mu.Lock()
	if c.inflight {
		// Coalesce: only the most recent queued navigation survives.
		if c.queued != nil {
			c.log.Info(ctx, "navigation superseded before start",
				"to", c.queued.doc.Name, "replaced_by", doc.Name)
		}
		c.queued = &pendingNav{doc: doc, trigger: trigger}
		c.mu.Unlock()
		return nil
	}
	c.inflight = true
	c.mu.Unlock()

	report := c.run(ctx, doc, trigger)

	for {
		c.mu.Lock()
		next := c.queued
		c.queued = nil
		if next == nil {
			c.inflight = false
			c.mu.Unlock()
			break
		}
		c.mu.Unlock()

		queuedReport := c.run(ctx, next.doc, next.trigger)
		c.log.Info(ctx, "queued navigation complete",
			"nav", queuedReport.Navigation.ID.String(), "to", next.doc.Name)
	}
	return report
}

// run executes one full navigation cycle.
func (c *Controller) run(ctx context.Context, doc *page.Document, trigger string) *Report {
	started := time.Now()
	from := ""
	current := c.view.Document()
	if current != nil {
		from = current.Name
	}
	nav := Navigation{ID: uuid.New(), From: from, To: doc.Name, Trigger: trigger}
	c.log.Info(ctx, "navigation start",
		"nav", nav.ID.String(), "from", nav.From, "to", nav.To, "trigger", nav.Trigger)

	report := &Report{Navigation: nav}

	if current != nil {
		report.Leave = c.TransitionOut(ctx, nav)
		// The departed page's bindings are gone with its registries; clear
		// its markers so a revisit binds fresh and repopulates them.
		c.binder.Forget(from)
	}

	c.view.SetDocument(doc)
	report.BindErrors = c.discover(ctx, doc)
	report.Enter = c.TransitionIn(ctx, nav)

	report.Duration = time.Since(started)
	c.log.Info(ctx, "navigation complete",
		"nav", nav.ID.String(), "to", nav.To, "duration", report.Duration.String())
	return report
}

// TransitionOut runs the Leave phase: page-out callbacks join (with element
// guards applied), then destroy hooks in registration order, then the
// scroll position resets to the top. Failures are logged, never propagated.
func (c *Controller) TransitionOut(ctx context.Context, nav Navigation) []Result {
	pageOut, destroy := c.registry.drainLeave()

	tasks := make([]Task, 0, len(pageOut))
	skipped := make(map[int]bool)
	for i, entry := range pageOut {
		if entry.element != "" && !c.elementVisible(entry.element) {
			skipped[i] = true
			tasks = append(tasks, Task{Name: entry.name, Run: resolveImmediately})
			continue
		}
		tasks = append(tasks, Task{Name: entry.name, Run: entry.fn})
	}

	results := Join(ctx, tasks)
	for i := range results {
		results[i].Skipped = skipped[i]
	}
	c.logFailures(ctx, nav, "page-out", results)

	c.runHooks(ctx, nav, "destroy", destroy)
	c.scroller.ScrollTo(0, true)
	return results
}

// TransitionIn runs the Enter phase: layout and resize state refresh,
// page-in callbacks join, then mount hooks in registration order.
func (c *Controller) TransitionIn(ctx context.Context, nav Navigation) []Result {
	c.scroller.Resize()
	c.resizer.Flush()
	c.observer.Evaluate()

	pageIn, mount := c.registry.drainEnter()

	tasks := make([]Task, 0, len(pageIn))
	for _, entry := range pageIn {
		tasks = append(tasks, Task{Name: entry.name, Run: entry.fn})
	}
	results := Join(ctx, tasks)
	c.logFailures(ctx, nav, "page-in", results)

	c.runHooks(ctx, nav, "mount", mount)
	return results
}

// discover binds unbound module elements on the target document. Binding
// failures are logged and reported; none aborts the pass.
func (c *Controller) discover(ctx context.Context, doc *page.Document) []error {
	errs := c.binder.Discover(ctx, doc, c.registry)
	for _, err := range errs {
		c.log.Warn(ctx, err, "module binding failed", "page", doc.Name)
	}
	return errs
}

// elementVisible checks, synchronously at dispatch time, whether the
// element's rectangle intersects the viewport.
func (c *Controller) elementVisible(id string) bool {
	rect, ok := c.view.ElementRect(id)
	if !ok {
		return false
	}
	top := rect.Top - c.view.ScrollTop()
	return top < c.view.ViewportSize().Height && top+rect.Height > 0
}

// runHooks invokes synchronous hooks in registration order, converting a
// panic into a logged warning so the remaining hooks still run.
func (c *Controller) runHooks(ctx context.Context, nav Navigation, phase string, hooks []hookEntry) {
	for _, h := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Warn(ctx, fmt.Errorf("%v", r), "lifecycle hook panicked",
						"nav", nav.ID.String(), "phase", phase, "hook", h.name)
				}
			}()
			h.fn()
		}()
	}
}

func (c *Controller) logFailures(ctx context.Context, nav Navigation, phase string, results []Result) {
	for _, r := range Failures(results) {
		c.log.Warn(ctx, r.Err, "transition callback failed",
			"nav", nav.ID.String(), "phase", phase, "task", r.Name)
	}
}

func resolveImmediately(context.Context) error { return nil }
