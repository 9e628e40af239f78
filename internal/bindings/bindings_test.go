package bindings

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motifkit/motif/internal/layout"
	"github.com/motifkit/motif/internal/lifecycle"
	"github.com/motifkit/motif/internal/page"
	"github.com/motifkit/motif/internal/runtime"
)

const homeMarkup = `<html><head><title>Home</title></head><body>
<div id="hero" data-module="fade" data-height="800" data-duration="30"></div>
<div id="feature" data-module="reveal" data-height="600" data-duration="30"></div>
<div id="backdrop" data-module="parallax" data-height="1400" data-speed="0.3"></div>
</body></html>`

func startEngine(t *testing.T) (*runtime.Engine, *State) {
	t.Helper()
	e := runtime.New(runtime.Options{
		Viewport: layout.Size{Width: 1280, Height: 800},
	})
	t.Cleanup(e.Close)

	state := NewState()
	require.NoError(t, Register(e, state))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go e.Run(ctx, time.Millisecond)

	return e, state
}

func loadPage(t *testing.T, e *runtime.Engine, name, markup string) *lifecycle.Report {
	t.Helper()
	doc, err := page.Parse(name, strings.NewReader(markup))
	require.NoError(t, err)
	report := e.Load(context.Background(), doc)
	require.NotNil(t, report)
	return report
}

func TestFade_EntranceCompletesOnLoad(t *testing.T) {
	e, state := startEngine(t)

	report := loadPage(t, e, "home", homeMarkup)
	assert.Empty(t, report.BindErrors)
	assert.Empty(t, lifecycle.Failures(report.Enter))

	assert.Eventually(t, func() bool {
		v, ok := state.Value("hero")
		return ok && v == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestFade_ExitRunsOnNavigation(t *testing.T) {
	e, state := startEngine(t)
	loadPage(t, e, "home", homeMarkup)

	doc, err := page.Parse("about", strings.NewReader(homeMarkup))
	require.NoError(t, err)
	report := e.Navigate(context.Background(), doc, "link")
	require.NotNil(t, report)

	var fadeOut *lifecycle.Result
	for i := range report.Leave {
		if report.Leave[i].Name == "fade:hero" {
			fadeOut = &report.Leave[i]
		}
	}
	require.NotNil(t, fadeOut, "fade exit should run during the leave phase")
	assert.False(t, fadeOut.Skipped, "hero is in view, so its exit must not be skipped")
	assert.NoError(t, fadeOut.Err)

	assert.Eventually(t, func() bool {
		v, ok := state.Value("hero")
		return ok && v == 1
	}, 2*time.Second, 5*time.Millisecond, "entrance on the new page ends at 1")
}

func TestFade_ExitSkippedWhenElementOffscreen(t *testing.T) {
	e, _ := startEngine(t)

	// The fade element sits far below the fold and is never scrolled to.
	markup := `<html><body>
<div id="spacer" data-module="parallax" data-height="4000"></div>
<div id="deep" data-module="fade" data-duration="30"></div>
</body></html>`
	loadPage(t, e, "tall", markup)

	doc, err := page.Parse("next", strings.NewReader(homeMarkup))
	require.NoError(t, err)
	report := e.Navigate(context.Background(), doc, "link")

	var fadeOut *lifecycle.Result
	for i := range report.Leave {
		if report.Leave[i].Name == "fade:deep" {
			fadeOut = &report.Leave[i]
		}
	}
	require.NotNil(t, fadeOut)
	assert.True(t, fadeOut.Skipped)
}

func TestReveal_TriggersWhenScrolledIntoView(t *testing.T) {
	e, state := startEngine(t)
	loadPage(t, e, "home", homeMarkup)

	// feature spans [800,1400) and starts outside the 800px viewport.
	_, ok := state.Value("feature")
	assert.False(t, ok, "reveal must not animate before the element is visible")

	e.Smoother.ScrollTo(400, true)

	assert.Eventually(t, func() bool {
		v, ok := state.Value("feature")
		return ok && v == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestParallax_MapsScrollProgressToOffset(t *testing.T) {
	e, state := startEngine(t)
	loadPage(t, e, "home", homeMarkup)

	// backdrop spans [1400,2800); with bottom/top triggers its travel runs
	// from scrollTop 600 (top edge enters) to 2800 (bottom edge exits).
	e.Smoother.ScrollTo(1700, true)

	assert.Eventually(t, func() bool {
		v, ok := state.Value("backdrop")
		return ok && math.Abs(v) < 1e-9
	}, 2*time.Second, 5*time.Millisecond, "halfway through the travel maps to the range midpoint")

	e.Smoother.ScrollTo(1150, true)
	assert.Eventually(t, func() bool {
		v, ok := state.Value("backdrop")
		return ok && math.Abs(v+15) < 1e-9
	}, 2*time.Second, 5*time.Millisecond)
}
