// Package scanner discovers page files on disk, parses them into documents,
// and keeps the page registry current.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/motifkit/motif/internal/logging"
	"github.com/motifkit/motif/internal/page"
	"github.com/motifkit/motif/internal/registry"
)

// PageScanner walks configured scan paths for HTML pages and registers the
// parsed documents.
type PageScanner struct {
	registry *registry.PageRegistry
	paths    []string
	excludes []string
	log      logging.Logger
}

// NewPageScanner creates a scanner over the given scan paths. Exclude
// patterns are matched against each file's base name.
func NewPageScanner(reg *registry.PageRegistry, paths, excludes []string, log logging.Logger) *PageScanner {
	return &PageScanner{
		registry: reg,
		paths:    paths,
		excludes: excludes,
		log:      log.WithComponent("scanner"),
	}
}

// ScanAll walks every scan path. Unparseable pages are logged and skipped;
// the scan itself only fails on filesystem errors.
func (s *PageScanner) ScanAll(ctx context.Context) error {
	for _, root := range s.paths {
		if err := s.scanRoot(ctx, root); err != nil {
			return err
		}
	}
	s.log.Info(ctx, "scan complete", "pages", s.registry.Count())
	return nil
}

func (s *PageScanner) scanRoot(ctx context.Context, root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		s.log.Debug(ctx, "scan path missing, skipping", "path", root)
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsPageFile(path) || s.excluded(path) {
			return nil
		}
		if err := s.ScanFile(ctx, path); err != nil {
			s.log.Warn(ctx, err, "skipping page", "path", path)
		}
		return nil
	})
}

// ScanFile parses a single page file and registers it.
func (s *PageScanner) ScanFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading page %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := page.Parse(name, strings.NewReader(string(content)))
	if err != nil {
		return fmt.Errorf("parsing page %s: %w", path, err)
	}
	doc.Path = path

	info := &registry.PageInfo{
		Name:     doc.Name,
		Path:     path,
		Title:    doc.Title,
		Modules:  doc.Modules(),
		Elements: len(doc.Elements),
		Height:   doc.Height,
		Hash:     xxhash.Sum64(content),
		Doc:      doc,
	}
	if fi, err := os.Stat(path); err == nil {
		info.LastMod = fi.ModTime()
	}

	s.registry.Register(info)
	s.log.Debug(ctx, "page registered", "page", doc.Name, "elements", len(doc.Elements))
	return nil
}

// RemoveFile drops the registry entry for a deleted page file.
func (s *PageScanner) RemoveFile(path string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s.registry.Remove(name)
}

// IsPageFile reports whether path looks like a scannable page.
func IsPageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

func (s *PageScanner) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range s.excludes {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
