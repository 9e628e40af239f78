package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/motifkit/motif/internal/layout"
)

func TestLoop_StepDeltas(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	loop := NewLoop(clock)

	var frames []Frame
	loop.Ticks().Add(func(f Frame) { frames = append(frames, f) }, 0)

	loop.Step()
	clock.Advance(16 * time.Millisecond)
	loop.Step()
	clock.Advance(32 * time.Millisecond)
	loop.Step()

	assert.Len(t, frames, 3)
	assert.Equal(t, time.Duration(0), frames[0].Delta)
	assert.Equal(t, 16*time.Millisecond, frames[1].Delta)
	assert.Equal(t, 32*time.Millisecond, frames[2].Delta)
}

func TestLoop_TimeScaleStretchesDeltas(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	loop := NewLoop(clock)
	loop.SetTimeScale(0.5)

	loop.Step()
	clock.Advance(16 * time.Millisecond)
	f := loop.Step()

	// Half-speed slow motion: subscribers see half the real delta.
	assert.Equal(t, 8*time.Millisecond, f.Delta)
	assert.InDelta(t, 0.008, f.Time, 1e-9)
}

func TestLoop_TimeIsMonotonicScaledCounter(t *testing.T) {
	clock := NewManualClock(time.Unix(100, 0))
	loop := NewLoop(clock)
	loop.SetTimeScale(2)

	loop.Step()
	clock.Advance(500 * time.Millisecond)
	f := loop.Step()

	assert.InDelta(t, 1.0, f.Time, 1e-9)

	clock.Advance(250 * time.Millisecond)
	g := loop.Step()
	assert.Greater(t, g.Time, f.Time)
}

func TestResize_DebouncesRapidEvents(t *testing.T) {
	r := NewResize(layout.Size{Width: 1280, Height: 720}, 20*time.Millisecond)

	var got []layout.Size
	r.Sizes().Add(func(s layout.Size) { got = append(got, s) }, 0)

	r.Set(layout.Size{Width: 1300, Height: 720})
	r.Set(layout.Size{Width: 1400, Height: 800})
	r.Set(layout.Size{Width: 1440, Height: 900})

	assert.Eventually(t, func() bool { return len(got) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, layout.Size{Width: 1440, Height: 900}, got[0])
	assert.Equal(t, layout.Size{Width: 1440, Height: 900}, r.Current())
}

func TestResize_SuppressesUnchangedDimensions(t *testing.T) {
	initial := layout.Size{Width: 1280, Height: 720}
	r := NewResize(initial, 10*time.Millisecond)

	calls := 0
	r.Sizes().Add(func(layout.Size) { calls++ }, 0)

	r.Set(layout.Size{Width: 1500, Height: 720})
	r.Set(initial)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, calls)
}

func TestResize_FlushSettlesImmediately(t *testing.T) {
	r := NewResize(layout.Size{Width: 100, Height: 100}, time.Hour)

	var got []layout.Size
	r.Sizes().Add(func(s layout.Size) { got = append(got, s) }, 0)

	r.Set(layout.Size{Width: 200, Height: 100})
	r.Flush()

	assert.Equal(t, []layout.Size{{Width: 200, Height: 100}}, got)
}
