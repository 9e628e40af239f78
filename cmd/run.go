package cmd

import (
	"context"
	"fmt"
	"math"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/motifkit/motif/internal/bindings"
	"github.com/motifkit/motif/internal/config"
	"github.com/motifkit/motif/internal/layout"
	"github.com/motifkit/motif/internal/lifecycle"
	"github.com/motifkit/motif/internal/registry"
	"github.com/motifkit/motif/internal/runtime"
	"github.com/motifkit/motif/internal/scanner"
)

var runCmd = &cobra.Command{
	Use:   "run <page> [page...]",
	Short: "Simulate navigating through pages and print transition reports",
	Long: `Run loads the first page and then navigates through the rest in
order, driving the full transition lifecycle headlessly: page-out joins,
destroy hooks, module binding, page-in joins, and mount hooks. Each
navigation's report is printed.

Examples:
  motif run home                  # Load home and report the enter phase
  motif run home --scroll         # Also scroll through home viewport by viewport
  motif run home about contact    # Navigate home -> about -> contact`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var runScroll bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runScroll, "scroll", false,
		"Scroll through each page one viewport at a time after its transition")
}

// timeRounding keeps printed durations readable.
const timeRounding = time.Millisecond

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := newLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := registry.NewPageRegistry()
	sc := scanner.NewPageScanner(reg, cfg.Pages.ScanPaths, cfg.Pages.ExcludePatterns, log)
	if err := sc.ScanAll(ctx); err != nil {
		return fmt.Errorf("scanning pages: %w", err)
	}

	engine := runtime.New(runtime.Options{
		Viewport: layout.Size{
			Width:  cfg.Motion.ViewportWidth,
			Height: cfg.Motion.ViewportHeight,
		},
		ScrollLerp:  cfg.Motion.ScrollLerp,
		ResizeDelay: cfg.Motion.ResizeDelay(),
		TimeScale:   cfg.Motion.TimeScale,
		Logger:      log,
	})
	defer engine.Close()
	go engine.Run(ctx, cfg.Motion.FrameInterval())

	state := bindings.NewState()
	if err := bindings.Register(engine, state); err != nil {
		return fmt.Errorf("registering standard modules: %w", err)
	}

	for i, name := range args {
		info, ok := reg.Get(name)
		if !ok {
			return fmt.Errorf("page %q not found under %v", name, cfg.Pages.ScanPaths)
		}

		var report *lifecycle.Report
		if i == 0 {
			report = engine.Load(ctx, info.Doc)
		} else {
			report = engine.Navigate(ctx, info.Doc, "run")
		}
		printReport(report)

		if runScroll {
			for _, pos := range sweepScroll(ctx, engine) {
				fmt.Printf("  scroll %.0fpx\n", pos)
			}
			printState(state)
		}
	}
	return nil
}

// scrollSettleTimeout bounds how long a sweep waits for the smoother to
// reach each stop.
const scrollSettleTimeout = 10 * time.Second

// sweepScroll eases through the current page one viewport at a time so
// scroll-bound modules fire, waiting for the smoother to settle between
// stops. It returns the positions reached.
func sweepScroll(ctx context.Context, e *runtime.Engine) []float64 {
	vh := e.View.ViewportSize().Height
	limit := e.View.DocumentHeight() - vh
	if limit <= 0 {
		return nil
	}

	var stops []float64
	target := e.Smoother.Current()
	for target < limit {
		target = math.Min(target+vh, limit)
		e.Smoother.ScrollBy(vh)
		if !waitForScroll(ctx, e, target) {
			break
		}
		stops = append(stops, e.Smoother.Current())
	}
	return stops
}

// waitForScroll polls until the smoother snaps to target. The frame loop
// runs concurrently, so settling is exact once within the snap distance.
func waitForScroll(ctx context.Context, e *runtime.Engine, target float64) bool {
	deadline := time.NewTimer(scrollSettleTimeout)
	defer deadline.Stop()
	for {
		if e.Smoother.Current() == target {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-time.After(time.Millisecond):
		}
	}
}

func printState(state *bindings.State) {
	values := state.Snapshot()
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("  value %s = %.3f\n", id, values[id])
	}
}

func printReport(report *lifecycle.Report) {
	if report == nil {
		return
	}
	fmt.Printf("navigation %s: %s -> %s (%s)\n",
		report.Navigation.ID, orDash(report.Navigation.From), report.Navigation.To,
		report.Duration.Round(timeRounding))

	printResults("  leave", report.Leave)
	for _, err := range report.BindErrors {
		fmt.Printf("  bind error: %v\n", err)
	}
	printResults("  enter", report.Enter)
}

func printResults(phase string, results []lifecycle.Result) {
	for _, r := range results {
		switch {
		case r.Skipped:
			fmt.Printf("%s %s: skipped (offscreen)\n", phase, r.Name)
		case r.Err != nil:
			fmt.Printf("%s %s: failed: %v\n", phase, r.Name, r.Err)
		default:
			fmt.Printf("%s %s: ok (%s)\n", phase, r.Name, r.Duration.Round(timeRounding))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
