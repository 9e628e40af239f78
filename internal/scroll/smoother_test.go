package scroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/motifkit/motif/internal/frame"
	"github.com/motifkit/motif/internal/layout"
)

type staticMetrics struct {
	viewport  layout.Size
	docHeight float64
}

func (m staticMetrics) ViewportSize() layout.Size            { return m.viewport }
func (m staticMetrics) ScrollTop() float64                   { return 0 }
func (m staticMetrics) DocumentHeight() float64              { return m.docHeight }
func (m staticMetrics) ElementRect(string) (layout.Rect, bool) { return layout.Rect{}, false }

func testFrame(delta time.Duration) frame.Frame {
	return frame.Frame{Delta: delta}
}

func TestSmoother_EasesTowardTarget(t *testing.T) {
	s := NewSmoother(staticMetrics{viewport: layout.Size{Height: 800}, docHeight: 4000}, 10)

	var positions []float64
	s.Positions().Add(func(st layout.ScrollState) { positions = append(positions, st.Top) }, 0)

	s.ScrollTo(1000, false)
	for i := 0; i < 200; i++ {
		s.Step(testFrame(16 * time.Millisecond))
	}

	assert.NotEmpty(t, positions)
	for i := 1; i < len(positions); i++ {
		assert.Greater(t, positions[i], positions[i-1])
	}
	assert.Equal(t, 1000.0, s.Current())
}

func TestSmoother_ImmediateJumpNotifiesOnce(t *testing.T) {
	s := NewSmoother(staticMetrics{viewport: layout.Size{Height: 800}, docHeight: 4000}, 10)

	var states []layout.ScrollState
	s.Positions().Add(func(st layout.ScrollState) { states = append(states, st) }, 0)

	s.ScrollTo(500, true)

	assert.Len(t, states, 1)
	assert.Equal(t, 500.0, states[0].Top)
	assert.Equal(t, 1, states[0].Direction)

	// Settled: stepping produces no further notifications.
	s.Step(testFrame(16 * time.Millisecond))
	assert.Len(t, states, 1)
}

func TestSmoother_ClampsToScrollableRange(t *testing.T) {
	s := NewSmoother(staticMetrics{viewport: layout.Size{Height: 800}, docHeight: 2000}, 10)

	s.ScrollTo(99999, true)
	assert.Equal(t, 1200.0, s.Current())

	s.ScrollTo(-50, true)
	assert.Equal(t, 0.0, s.Current())
}

func TestSmoother_DirectionFollowsMovement(t *testing.T) {
	s := NewSmoother(staticMetrics{viewport: layout.Size{Height: 800}, docHeight: 4000}, 10)

	var dirs []int
	s.Positions().Add(func(st layout.ScrollState) { dirs = append(dirs, st.Direction) }, 0)

	s.ScrollTo(300, true)
	s.ScrollTo(100, true)

	assert.Equal(t, []int{1, -1}, dirs)
}

func TestSmoother_ShortDocumentNeverScrolls(t *testing.T) {
	s := NewSmoother(staticMetrics{viewport: layout.Size{Height: 800}, docHeight: 400}, 10)

	s.ScrollTo(100, true)
	assert.Equal(t, 0.0, s.Current())
}
