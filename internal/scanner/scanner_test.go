package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motifkit/motif/internal/logging"
	"github.com/motifkit/motif/internal/registry"
)

const pageMarkup = `<html><head><title>Home</title></head>
<body><div id="hero" data-module="fade"></div></body></html>`

func writePage(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanAll_RegistersPages(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "home.html", pageMarkup)
	writePage(t, dir, "nested/about.html", pageMarkup)
	writePage(t, dir, "notes.txt", "not a page")

	reg := registry.NewPageRegistry()
	s := NewPageScanner(reg, []string{dir}, nil, logging.NewNop())

	require.NoError(t, s.ScanAll(context.Background()))
	assert.Equal(t, 2, reg.Count())

	home, ok := reg.Get("home")
	require.True(t, ok)
	assert.Equal(t, "Home", home.Title)
	assert.Equal(t, []string{"fade"}, home.Modules)
	assert.Equal(t, 1, home.Elements)
	assert.NotZero(t, home.Hash)
	require.NotNil(t, home.Doc)
	assert.Equal(t, "home", home.Doc.Name)
}

func TestScanAll_MissingPathSkipped(t *testing.T) {
	reg := registry.NewPageRegistry()
	s := NewPageScanner(reg, []string{"/nonexistent/pages"}, nil, logging.NewNop())

	assert.NoError(t, s.ScanAll(context.Background()))
	assert.Zero(t, reg.Count())
}

func TestScanAll_ExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "home.html", pageMarkup)
	writePage(t, dir, "draft_home.html", pageMarkup)

	reg := registry.NewPageRegistry()
	s := NewPageScanner(reg, []string{dir}, []string{"draft_*"}, logging.NewNop())

	require.NoError(t, s.ScanAll(context.Background()))
	assert.Equal(t, 1, reg.Count())
}

func TestScanAll_HiddenDirsSkipped(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, ".cache/stale.html", pageMarkup)
	writePage(t, dir, "home.html", pageMarkup)

	reg := registry.NewPageRegistry()
	s := NewPageScanner(reg, []string{dir}, nil, logging.NewNop())

	require.NoError(t, s.ScanAll(context.Background()))
	assert.Equal(t, 1, reg.Count())
}

func TestScanFile_UnchangedContentSuppressesEvent(t *testing.T) {
	dir := t.TempDir()
	path := writePage(t, dir, "home.html", pageMarkup)

	reg := registry.NewPageRegistry()
	s := NewPageScanner(reg, []string{dir}, nil, logging.NewNop())
	ch := reg.Watch()

	require.NoError(t, s.ScanFile(context.Background(), path))
	<-ch
	require.NoError(t, s.ScanFile(context.Background(), path))

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev.Type)
	default:
	}
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	path := writePage(t, dir, "home.html", pageMarkup)

	reg := registry.NewPageRegistry()
	s := NewPageScanner(reg, []string{dir}, nil, logging.NewNop())
	require.NoError(t, s.ScanFile(context.Background(), path))
	require.Equal(t, 1, reg.Count())

	s.RemoveFile(path)
	assert.Zero(t, reg.Count())
}

func TestIsPageFile(t *testing.T) {
	assert.True(t, IsPageFile("pages/home.html"))
	assert.True(t, IsPageFile("INDEX.HTM"))
	assert.False(t, IsPageFile("styles/site.css"))
	assert.False(t, IsPageFile("app.js"))
}
