package viewport

import "sync"

// Event is the payload delivered to an Observe callback.
type Event struct {
	// Entry is the raw intersection entry.
	Entry Entry
	// IsIn reports whether the element currently intersects the viewport.
	IsIn bool
	// Direction is the sign of the change in the element's
	// viewport-relative top offset since the previous callback: +1 when
	// the offset grew (the page scrolled backward), -1 when it shrank.
	// The first callback always reports +1; an unchanged offset keeps
	// the previous direction.
	Direction int
}

// ObserveConfig configures an Observe tracker.
type ObserveConfig struct {
	// Config selects the observer group.
	Config Config
	// AutoStart begins tracking on construction.
	AutoStart bool
	// Once destroys the tracker after the first in-view callback.
	Once bool
	// Callback receives visibility events.
	Callback func(Event)
}

// Observe tracks a single element's viewport visibility through a
// [Manager]. Its lifecycle is idle, started, stopped, destroyed: Stop
// releases the observation but keeps state so Start can resume it; Destroy
// releases permanently, after which Start is a no-op.
type Observe struct {
	manager *Manager
	id      string
	cfg     ObserveConfig

	mu        sync.Mutex
	started   bool
	destroyed bool
	inView    bool
	hasPrev   bool
	prevTop   float64
	direction int
}

// NewObserve creates a tracker for the element id. With AutoStart set it
// begins observing immediately.
func NewObserve(manager *Manager, id string, cfg ObserveConfig) *Observe {
	o := &Observe{
		manager:   manager,
		id:        id,
		cfg:       cfg,
		direction: 1,
	}
	if cfg.AutoStart {
		o.Start()
	}
	return o
}

// Start registers the element with the manager. Calling Start on a started
// or destroyed tracker is a no-op.
func (o *Observe) Start() {
	o.mu.Lock()
	if o.started || o.destroyed {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.mu.Unlock()

	o.manager.AddElement(o.id, o.cfg.Config, o.onIntersect)
}

// Stop unregisters the element without discarding tracker state. A stopped
// tracker can be restarted.
func (o *Observe) Stop() {
	o.mu.Lock()
	if !o.started {
		o.mu.Unlock()
		return
	}
	o.started = false
	o.mu.Unlock()

	o.manager.RemoveElement(o.id)
}

// Destroy stops the tracker permanently. Further callbacks never fire and
// Start becomes a no-op.
func (o *Observe) Destroy() {
	o.mu.Lock()
	if o.destroyed {
		o.mu.Unlock()
		return
	}
	wasStarted := o.started
	o.started = false
	o.destroyed = true
	o.mu.Unlock()

	if wasStarted {
		o.manager.RemoveElement(o.id)
	}
}

// IsIn reports whether the element was intersecting at the last callback.
func (o *Observe) IsIn() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inView
}

// ElementID returns the observed element's id.
func (o *Observe) ElementID() string {
	return o.id
}

func (o *Observe) onIntersect(entry Entry) {
	o.mu.Lock()
	if o.destroyed {
		o.mu.Unlock()
		return
	}

	if o.hasPrev {
		switch {
		case entry.Top > o.prevTop:
			o.direction = 1
		case entry.Top < o.prevTop:
			o.direction = -1
		}
	} else {
		o.direction = 1
		o.hasPrev = true
	}
	o.prevTop = entry.Top
	o.inView = entry.Intersecting
	direction := o.direction
	fn := o.cfg.Callback
	selfDestroy := o.cfg.Once && entry.Intersecting
	o.mu.Unlock()

	if fn != nil {
		fn(Event{Entry: entry, IsIn: entry.Intersecting, Direction: direction})
	}
	if selfDestroy {
		o.Destroy()
	}
}
