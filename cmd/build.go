package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/motifkit/motif/internal/build"
	"github.com/motifkit/motif/internal/config"
	"github.com/motifkit/motif/internal/logging"
	"github.com/motifkit/motif/internal/registry"
	"github.com/motifkit/motif/internal/scanner"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write a static snapshot of all pages and assets",
	Long: `Build scans the configured page paths and writes every page plus its
assets to the output directory. Asset files get content-hashed names and
page references are rewritten to match.

Examples:
  motif build                     # Build into dist/
  motif build -o public           # Build into public/
  motif build --clean             # Remove stale output first`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("output", "o", "dist", "Output directory")
	buildCmd.Flags().Bool("clean", false, "Remove the output directory before building")
	buildCmd.Flags().Bool("hash-names", true, "Content-hash asset file names")

	_ = viper.BindPFlag("build.output_dir", buildCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("build.clean", buildCmd.Flags().Lookup("clean"))
	_ = viper.BindPFlag("build.hash_names", buildCmd.Flags().Lookup("hash-names"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := newLogger(cfg.Log.Level, cfg.Log.Format)
	return executeBuild(cmd.Context(), cfg, log)
}

func executeBuild(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	reg := registry.NewPageRegistry()
	sc := scanner.NewPageScanner(reg, cfg.Pages.ScanPaths, cfg.Pages.ExcludePatterns, log)
	if err := sc.ScanAll(ctx); err != nil {
		return fmt.Errorf("scanning pages: %w", err)
	}
	if reg.Count() == 0 {
		return fmt.Errorf("no pages found under %v", cfg.Pages.ScanPaths)
	}

	pipeline := build.NewPipeline(cfg, reg, log)
	result, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Printf("Built %d pages and %d assets into %s in %s\n",
		result.Pages, result.Assets, cfg.Build.OutputDir, result.Duration.Round(time.Millisecond))
	return nil
}
