package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/motifkit/motif/internal/bindings"
	"github.com/motifkit/motif/internal/config"
	"github.com/motifkit/motif/internal/layout"
	"github.com/motifkit/motif/internal/registry"
	"github.com/motifkit/motif/internal/runtime"
	"github.com/motifkit/motif/internal/scanner"
	"github.com/motifkit/motif/internal/server"
	"github.com/motifkit/motif/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development server with live reload",
	Long: `Start the development server. Pages found under the configured scan
paths are served with a live-reload script injected; editing a page or an
asset pushes a reload to connected browsers.

Examples:
  motif serve                     # Serve on the configured port
  motif serve -p 3000             # Serve on port 3000
  motif serve --no-open           # Don't open the browser`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("no-open", false, "Don't open browser automatically")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.no-open", serveCmd.Flags().Lookup("no-open"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := newLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	reg := registry.NewPageRegistry()
	sc := scanner.NewPageScanner(reg, cfg.Pages.ScanPaths, cfg.Pages.ExcludePatterns, log)

	var fw *watcher.FileWatcher
	if cfg.Development.HotReload {
		fw, err = watcher.New(cfg.Development.WatchDelay(), log)
		if err != nil {
			return fmt.Errorf("creating file watcher: %w", err)
		}
		defer fw.Stop()
	}

	srv := server.NewDevServer(server.Options{
		Config:   cfg,
		Registry: reg,
		Scanner:  sc,
		Watcher:  fw,
		Engine:   engine,
		Loop:     engine.Loop,
		State:    state,
		Logger:   log,
	})
	return srv.Start(ctx)
}
