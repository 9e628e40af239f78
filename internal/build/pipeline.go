// Package build implements the static build pipeline: pages from the
// registry are written to the output directory alongside their assets, with
// content-hashed asset names and rewritten references for cache busting.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"

	"github.com/motifkit/motif/internal/config"
	"github.com/motifkit/motif/internal/logging"
	"github.com/motifkit/motif/internal/registry"
)

// Result summarizes one build run.
type Result struct {
	Pages      int
	Assets     int
	TotalBytes int64
	Duration   time.Duration
	// AssetNames maps original asset base names to their hashed output
	// names.
	AssetNames map[string]string
}

// Pipeline writes a static snapshot of the registered pages.
type Pipeline struct {
	cfg      *config.Config
	registry *registry.PageRegistry
	log      logging.Logger
}

// NewPipeline creates a build pipeline over the page registry.
func NewPipeline(cfg *config.Config, reg *registry.PageRegistry, log logging.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		registry: reg,
		log:      log.WithComponent("build"),
	}
}

// Run executes a full build into the configured output directory.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	outDir := p.cfg.Build.OutputDir

	if p.cfg.Build.Clean {
		if err := os.RemoveAll(outDir); err != nil {
			return nil, fmt.Errorf("cleaning output dir: %w", err)
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	result := &Result{AssetNames: make(map[string]string)}

	if err := p.copyAssets(ctx, outDir, result); err != nil {
		return nil, err
	}
	if err := p.writePages(ctx, outDir, result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	p.log.Info(ctx, "build complete",
		"pages", result.Pages,
		"assets", result.Assets,
		"size", humanize.Bytes(uint64(result.TotalBytes)),
		"duration", result.Duration)
	return result, nil
}

// copyAssets copies every file under the asset paths into outDir/assets,
// hashing names when configured.
func (p *Pipeline) copyAssets(ctx context.Context, outDir string, result *Result) error {
	assetDir := filepath.Join(outDir, "assets")

	for _, root := range p.cfg.Pages.AssetPaths {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			p.log.Debug(ctx, "asset path missing, skipping", "path", root)
			continue
		}
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if info.IsDir() {
				if strings.HasPrefix(info.Name(), ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading asset %s: %w", path, err)
			}

			name := filepath.Base(path)
			outName := name
			if p.cfg.Build.HashNames {
				outName = hashedName(name, content)
			}
			result.AssetNames[name] = outName

			if err := os.MkdirAll(assetDir, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(assetDir, outName), content, 0o644); err != nil {
				return fmt.Errorf("writing asset %s: %w", outName, err)
			}

			result.Assets++
			result.TotalBytes += int64(len(content))
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// writePages copies every registered page into outDir, rewriting asset
// references to their hashed names.
func (p *Pipeline) writePages(ctx context.Context, outDir string, result *Result) error {
	for _, info := range p.registry.All() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		content, err := os.ReadFile(info.Path)
		if err != nil {
			return fmt.Errorf("reading page %s: %w", info.Path, err)
		}

		rewritten := rewriteAssetRefs(string(content), result.AssetNames)
		outPath := filepath.Join(outDir, info.Name+".html")
		if err := os.WriteFile(outPath, []byte(rewritten), 0o644); err != nil {
			return fmt.Errorf("writing page %s: %w", outPath, err)
		}

		result.Pages++
		result.TotalBytes += int64(len(rewritten))
		p.log.Debug(ctx, "page written", "page", info.Name)
	}
	return nil
}

// hashedName inserts a content hash before the extension: site.css becomes
// site.d41d8cd98f00b204.css.
func hashedName(name string, content []byte) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s.%016x%s", stem, xxhash.Sum64(content), ext)
}

// rewriteAssetRefs replaces references to original asset names with their
// hashed output names. Longer names are replaced first so a name that is a
// substring of another cannot clobber it.
func rewriteAssetRefs(content string, names map[string]string) string {
	keys := make([]string, 0, len(names))
	for name, hashed := range names {
		if name != hashed {
			keys = append(keys, name)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	for _, name := range keys {
		content = strings.ReplaceAll(content, name, names[name])
	}
	return content
}
