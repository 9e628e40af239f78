package tween

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/motifkit/motif/internal/frame"
)

func TestBezier_Endpoints(t *testing.T) {
	for _, c := range []Curve{Linear, Ease, EaseIn, EaseOut, EaseInOut, Expo} {
		assert.Equal(t, 0.0, c(0))
		assert.Equal(t, 1.0, c(1))
		assert.Equal(t, 0.0, c(-0.5))
		assert.Equal(t, 1.0, c(1.5))
	}
}

func TestBezier_LinearControlPointsMatchLinear(t *testing.T) {
	c := Bezier(1.0/3, 1.0/3, 2.0/3, 2.0/3)
	for _, x := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		assert.InDelta(t, x, c(x), 1e-4)
	}
}

func TestBezier_EaseInStartsSlow(t *testing.T) {
	assert.Less(t, EaseIn(0.25), 0.25)
	assert.Greater(t, EaseOut(0.25), 0.25)
}

func TestTween_CompletesOverDuration(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	loop := frame.NewLoop(clock)
	s := NewScheduler(loop)
	defer s.Close()

	var values []float64
	tw := s.Animate(0, 100, 100*time.Millisecond,
		WithCurve(Linear),
		WithOnUpdate(func(v float64) { values = append(values, v) }),
	)

	loop.Step()
	for i := 0; i < 10; i++ {
		clock.Advance(10 * time.Millisecond)
		loop.Step()
	}

	assert.Equal(t, StateDone, tw.State())
	assert.Equal(t, 100.0, tw.Value())
	assert.Equal(t, 0, s.ActiveCount())

	select {
	case <-tw.Done():
	default:
		t.Fatal("done channel not closed")
	}

	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1])
	}
}

func TestTween_ZeroDurationSettlesOnFirstStep(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	loop := frame.NewLoop(clock)
	s := NewScheduler(loop)
	defer s.Close()

	tw := s.Animate(0, 1, 0)
	loop.Step()

	assert.Equal(t, StateDone, tw.State())
	assert.Equal(t, 1.0, tw.Value())
}

func TestTween_StopCancelsAndClosesDone(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	loop := frame.NewLoop(clock)
	s := NewScheduler(loop)
	defer s.Close()

	tw := s.Animate(0, 100, time.Second, WithCurve(Linear))
	loop.Step()
	clock.Advance(100 * time.Millisecond)
	loop.Step()

	tw.Stop()
	assert.Equal(t, StateStopped, tw.State())
	select {
	case <-tw.Done():
	default:
		t.Fatal("done channel not closed after stop")
	}

	// A stopped tween holds its value and is dropped by the scheduler.
	held := tw.Value()
	clock.Advance(100 * time.Millisecond)
	loop.Step()
	assert.Equal(t, held, tw.Value())
	assert.Equal(t, 0, s.ActiveCount())
}

func TestScheduler_CloseStopsActiveTweens(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	loop := frame.NewLoop(clock)
	s := NewScheduler(loop)

	tw := s.Animate(0, 1, time.Hour)
	s.Close()

	assert.Equal(t, StateStopped, tw.State())
	assert.Equal(t, 0, loop.Ticks().Len())
}
