// Package bindings ships the standard motion modules: fade and slide
// entrance/exit animations, scroll-reveal, and parallax. Each module is a
// lifecycle factory bound to elements through their data-module attribute.
package bindings

import (
	"context"
	"sync"
	"time"

	"github.com/motifkit/motif/internal/lifecycle"
	"github.com/motifkit/motif/internal/runtime"
	"github.com/motifkit/motif/internal/tween"
	"github.com/motifkit/motif/internal/viewport"
)

// DefaultDuration is the entrance animation length when an element does not
// declare data-duration (milliseconds).
const DefaultDuration = 600 * time.Millisecond

// exitFraction shortens exit animations relative to entrances.
const exitFraction = 0.5

// State holds the latest animated value per element. The standard modules
// publish into it; the dev server reads it out for inspection.
type State struct {
	mu     sync.RWMutex
	values map[string]float64
}

// NewState creates an empty state.
func NewState() *State {
	return &State{values: make(map[string]float64)}
}

func (s *State) set(id string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = v
}

// Value returns the latest value published for an element.
func (s *State) Value(id string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id]
	return v, ok
}

// Snapshot returns a copy of every published value.
func (s *State) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.values))
	for id, v := range s.values {
		out[id] = v
	}
	return out
}

// Register installs the standard modules on the engine's binder.
func Register(e *runtime.Engine, state *State) error {
	modules := []struct {
		name    string
		factory lifecycle.Factory
	}{
		{"fade", Fade(e, state)},
		{"slide", Slide(e, state)},
		{"reveal", Reveal(e, state)},
		{"parallax", Parallax(e, state)},
	}
	for _, m := range modules {
		if err := e.Binder.RegisterModule(m.name, m.factory); err != nil {
			return err
		}
	}
	return nil
}

// Fade animates an element's opacity in on page entry and out on page exit.
// The exit is guarded by the element: it resolves immediately when the
// element is outside the viewport at leave time.
func Fade(e *runtime.Engine, state *State) lifecycle.Factory {
	return func(b lifecycle.Binding) error {
		id := b.Element.ID
		duration := durationAttr(b, DefaultDuration)

		b.Registry.OnPageIn(func(ctx context.Context) error {
			tw := e.Tweens.Animate(0, 1, duration,
				tween.WithCurve(tween.EaseOut),
				tween.WithOnUpdate(func(v float64) { state.set(id, v) }))
			return await(ctx, tw)
		}, lifecycle.WithName("fade:"+id))

		b.Registry.OnPageOut(func(ctx context.Context) error {
			tw := e.Tweens.Animate(1, 0, scale(duration, exitFraction),
				tween.WithCurve(tween.EaseIn),
				tween.WithOnUpdate(func(v float64) { state.set(id, v) }))
			return await(ctx, tw)
		}, lifecycle.WithName("fade:"+id), lifecycle.WithElement(id))

		return nil
	}
}

// Slide translates an element from a data-distance offset (default 80px) to
// rest on page entry, and back out on page exit.
func Slide(e *runtime.Engine, state *State) lifecycle.Factory {
	return func(b lifecycle.Binding) error {
		id := b.Element.ID
		duration := durationAttr(b, DefaultDuration)
		distance := b.Element.FloatAttr("distance", 80)

		b.Registry.OnPageIn(func(ctx context.Context) error {
			tw := e.Tweens.Animate(distance, 0, duration,
				tween.WithCurve(tween.Expo),
				tween.WithOnUpdate(func(v float64) { state.set(id, v) }))
			return await(ctx, tw)
		}, lifecycle.WithName("slide:"+id))

		b.Registry.OnPageOut(func(ctx context.Context) error {
			tw := e.Tweens.Animate(0, distance, scale(duration, exitFraction),
				tween.WithCurve(tween.EaseIn),
				tween.WithOnUpdate(func(v float64) { state.set(id, v) }))
			return await(ctx, tw)
		}, lifecycle.WithName("slide:"+id), lifecycle.WithElement(id))

		return nil
	}
}

// Reveal animates an element in the first time it scrolls into view. With
// data-repeat set the animation replays on every entry instead of once.
func Reveal(e *runtime.Engine, state *State) lifecycle.Factory {
	return func(b lifecycle.Binding) error {
		id := b.Element.ID
		duration := durationAttr(b, DefaultDuration)
		margin := b.Element.FloatAttr("margin", 0)
		repeat := b.Element.Attr("repeat", "") != ""

		obs := e.Observe(id, viewport.ObserveConfig{
			Config: viewport.Config{MarginBottom: margin},
			Once:   !repeat,
			Callback: func(ev viewport.Event) {
				if !ev.IsIn {
					return
				}
				e.Tweens.Animate(0, 1, duration,
					tween.WithCurve(tween.EaseOut),
					tween.WithOnUpdate(func(v float64) { state.set(id, v) }))
			},
		})

		b.Registry.OnMount("reveal:"+id, obs.Start)
		b.Registry.OnDestroy("reveal:"+id, obs.Destroy)
		return nil
	}
}

// Parallax maps the element's scroll progress onto a pixel offset range
// derived from data-speed: ±speed×100 pixels across the element's travel
// through the viewport.
func Parallax(e *runtime.Engine, state *State) lifecycle.Factory {
	return func(b lifecycle.Binding) error {
		id := b.Element.ID
		speed := b.Element.FloatAttr("speed", 0.2)

		trk := e.Track(id, viewport.TrackConfig{
			Top:    viewport.TriggerBottom,
			Bottom: viewport.TriggerTop,
			From:   -speed * 100,
			To:     speed * 100,
			Callback: func(ev viewport.TrackEvent) {
				state.set(id, ev.Value)
			},
		})

		b.Registry.OnDestroy("parallax:"+id, trk.Destroy)
		return nil
	}
}

// await blocks until the tween settles or ctx is cancelled, stopping the
// tween in the latter case.
func await(ctx context.Context, tw *tween.Tween) error {
	select {
	case <-ctx.Done():
		tw.Stop()
		return ctx.Err()
	case <-tw.Done():
		return nil
	}
}

func durationAttr(b lifecycle.Binding, fallback time.Duration) time.Duration {
	ms := b.Element.FloatAttr("duration", float64(fallback/time.Millisecond))
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
