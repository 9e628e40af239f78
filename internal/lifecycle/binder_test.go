package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motifkit/motif/internal/page"
)

func parseDoc(t *testing.T, markup string) *page.Document {
	t.Helper()
	doc, err := page.Parse("test", strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestBinder_BindsKnownModules(t *testing.T) {
	doc := parseDoc(t, `<body>
		<div id="a" data-module="fade"></div>
		<div id="b" data-module="fade"></div>
	</body>`)

	b := NewBinder()
	var bound []string
	require.NoError(t, b.RegisterModule("fade", func(bd Binding) error {
		bound = append(bound, bd.Element.ID)
		return nil
	}))

	errs := b.Discover(context.Background(), doc, NewRegistry())

	assert.Empty(t, errs)
	assert.Equal(t, []string{"a", "b"}, bound)
}

func TestBinder_DuplicateRegistrationRejected(t *testing.T) {
	b := NewBinder()
	require.NoError(t, b.RegisterModule("fade", func(Binding) error { return nil }))
	assert.Error(t, b.RegisterModule("fade", func(Binding) error { return nil }))
}

func TestBinder_UnknownModuleIsTypedError(t *testing.T) {
	doc := parseDoc(t, `<body><div id="x" data-module="sparkle"></div></body>`)

	b := NewBinder()
	errs := b.Discover(context.Background(), doc, NewRegistry())

	require.Len(t, errs, 1)
	var unknown *UnknownModuleError
	require.ErrorAs(t, errs[0], &unknown)
	assert.Equal(t, "sparkle", unknown.Module)
	assert.Equal(t, "x", unknown.Element)
}

func TestBinder_RediscoveryIsIdempotent(t *testing.T) {
	doc := parseDoc(t, `<body><div id="a" data-module="fade"></div></body>`)

	b := NewBinder()
	calls := 0
	require.NoError(t, b.RegisterModule("fade", func(Binding) error {
		calls++
		return nil
	}))

	reg := NewRegistry()
	b.Discover(context.Background(), doc, reg)
	b.Discover(context.Background(), doc, reg)

	assert.Equal(t, 1, calls)
}

func TestBinder_FailedBindCanRetry(t *testing.T) {
	doc := parseDoc(t, `<body><div id="a" data-module="flaky"></div></body>`)

	b := NewBinder()
	attempts := 0
	require.NoError(t, b.RegisterModule("flaky", func(Binding) error {
		attempts++
		if attempts == 1 {
			return errors.New("not ready")
		}
		return nil
	}))

	reg := NewRegistry()
	errs := b.Discover(context.Background(), doc, reg)
	require.Len(t, errs, 1)
	var bindErr *BindError
	require.ErrorAs(t, errs[0], &bindErr)
	assert.Equal(t, "flaky", bindErr.Module)

	// The marker was rolled back: the next pass retries and succeeds.
	errs = b.Discover(context.Background(), doc, reg)
	assert.Empty(t, errs)
	assert.Equal(t, 2, attempts)

	// Bound now: no third invocation.
	b.Discover(context.Background(), doc, reg)
	assert.Equal(t, 2, attempts)
}

func TestBinder_FactoryPanicBecomesBindError(t *testing.T) {
	doc := parseDoc(t, `<body><div id="a" data-module="boom"></div></body>`)

	b := NewBinder()
	require.NoError(t, b.RegisterModule("boom", func(Binding) error {
		panic("nil deref")
	}))

	errs := b.Discover(context.Background(), doc, NewRegistry())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "panicked")
}

func TestBinder_ForgetAllowsRebinding(t *testing.T) {
	doc := parseDoc(t, `<body><div id="a" data-module="fade"></div></body>`)

	b := NewBinder()
	calls := 0
	require.NoError(t, b.RegisterModule("fade", func(Binding) error {
		calls++
		return nil
	}))

	reg := NewRegistry()
	b.Discover(context.Background(), doc, reg)
	b.Forget("test")
	b.Discover(context.Background(), doc, reg)

	assert.Equal(t, 2, calls)
}

func TestBinder_MarkersScopedPerDocument(t *testing.T) {
	docA := parseDoc(t, `<body><div id="a" data-module="fade"></div></body>`)
	docB, err := page.Parse("other", strings.NewReader(`<body><div id="a" data-module="fade"></div></body>`))
	require.NoError(t, err)

	b := NewBinder()
	calls := 0
	require.NoError(t, b.RegisterModule("fade", func(Binding) error {
		calls++
		return nil
	}))

	reg := NewRegistry()
	b.Discover(context.Background(), docA, reg)
	b.Discover(context.Background(), docB, reg)

	assert.Equal(t, 2, calls)
}
