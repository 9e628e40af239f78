// Package server implements the motif dev server: it serves scanned pages
// and assets over HTTP, streams live-reload notifications over a websocket
// hub, and exposes runtime statistics for inspection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/motifkit/motif/internal/bindings"
	"github.com/motifkit/motif/internal/config"
	"github.com/motifkit/motif/internal/frame"
	"github.com/motifkit/motif/internal/logging"
	"github.com/motifkit/motif/internal/registry"
	"github.com/motifkit/motif/internal/runtime"
	"github.com/motifkit/motif/internal/scanner"
	"github.com/motifkit/motif/internal/watcher"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// Options wires the dev server's collaborators.
type Options struct {
	Config   *config.Config
	Registry *registry.PageRegistry
	Scanner  *scanner.PageScanner
	// Watcher is optional; without it the server still serves pages but
	// never pushes reloads on file changes.
	Watcher *watcher.FileWatcher
	// Engine is optional; when present the first scanned page is loaded
	// into the motion runtime on startup, and a rescanned page has its
	// binder markers cleared so the next discovery binds it fresh.
	Engine *runtime.Engine
	// Loop is optional; when present /api/stats includes frame timing
	// percentiles.
	Loop *frame.Loop
	// State is optional; when present /api/stats includes the latest
	// animated values.
	State  *bindings.State
	Logger logging.Logger
}

// DevServer is the development HTTP server.
type DevServer struct {
	cfg      *config.Config
	registry *registry.PageRegistry
	scanner  *scanner.PageScanner
	watcher  *watcher.FileWatcher
	engine   *runtime.Engine
	loop     *frame.Loop
	state    *bindings.State
	hub      *Hub
	log      logging.Logger

	httpServer *http.Server
}

// NewDevServer creates a dev server from options.
func NewDevServer(opts Options) *DevServer {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	s := &DevServer{
		cfg:      opts.Config,
		registry: opts.Registry,
		scanner:  opts.Scanner,
		watcher:  opts.Watcher,
		engine:   opts.Engine,
		loop:     opts.Loop,
		state:    opts.State,
		hub:      NewHub(log),
		log:      log.WithComponent("server"),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", opts.Config.Server.Host, opts.Config.Server.Port),
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Hub returns the live-reload hub, exposed for tests and for callers that
// broadcast their own messages.
func (s *DevServer) Hub() *Hub {
	return s.hub
}

// Addr returns the listen address.
func (s *DevServer) Addr() string {
	return s.httpServer.Addr
}

// Start scans pages, begins watching for changes, and serves until ctx is
// cancelled.
func (s *DevServer) Start(ctx context.Context) error {
	if err := s.scanner.ScanAll(ctx); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}
	s.loadInitialPage(ctx)
	s.startReloadLoop(ctx)
	if err := s.startWatcher(ctx); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	s.log.Info(ctx, "dev server listening", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.Close()
	return s.httpServer.Shutdown(shutdownCtx)
}

// loadInitialPage drives the first scanned page through the motion runtime
// so the engine the server reports on is actually animating something.
func (s *DevServer) loadInitialPage(ctx context.Context) {
	if s.engine == nil {
		return
	}
	pages := s.registry.All()
	if len(pages) == 0 {
		return
	}
	report := s.engine.Load(ctx, pages[0].Doc)
	s.log.Info(ctx, "loaded page into motion runtime",
		"page", pages[0].Name, "nav", report.Navigation.ID.String())
}

// startReloadLoop forwards registry events to connected clients. A changed
// page also has its binder markers cleared, so the next discovery pass
// binds the edited page fresh instead of treating it as already initialized.
func (s *DevServer) startReloadLoop(ctx context.Context) {
	events := s.registry.Watch()
	go func() {
		defer s.registry.UnWatch(events)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if s.engine != nil {
					s.engine.Binder.Forget(ev.Page.Name)
				}
				s.broadcastReload("page", ev.Page.Name)
			}
		}
	}()
}

// startWatcher rescans changed pages and pushes asset reloads.
func (s *DevServer) startWatcher(ctx context.Context) error {
	if s.watcher == nil || !s.cfg.Development.HotReload {
		return nil
	}

	s.watcher.AddFilter(watcher.NoHidden)
	s.watcher.AddFilter(watcher.AnyOf(watcher.PageFilter, watcher.AssetFilter))
	s.watcher.AddHandler(func(events []watcher.ChangeEvent) {
		for _, ev := range events {
			switch {
			case scanner.IsPageFile(ev.Path):
				if ev.Type == watcher.EventTypeDeleted {
					s.scanner.RemoveFile(ev.Path)
					continue
				}
				if err := s.scanner.ScanFile(ctx, ev.Path); err != nil {
					s.log.Warn(ctx, err, "rescan failed", "path", ev.Path)
				}
			default:
				s.broadcastReload("asset", filepath.Base(ev.Path))
			}
		}
	})

	for _, root := range append(s.cfg.Pages.ScanPaths, s.cfg.Pages.AssetPaths...) {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		if err := s.watcher.AddRecursive(root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}
	s.watcher.Start(ctx)
	return nil
}

func (s *DevServer) broadcastReload(kind, target string) {
	payload, err := json.Marshal(map[string]string{
		"type":   "reload",
		"kind":   kind,
		"target": target,
	})
	if err != nil {
		return
	}
	s.hub.Broadcast(payload)
}

func (s *DevServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/pages/", s.handlePage)
	mux.HandleFunc("/assets/", s.handleAsset)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/pages", s.handleAPIPages)
	mux.HandleFunc("/api/stats", s.handleAPIStats)
	return mux
}

func (s *DevServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>motif</title></head><body>")
	b.WriteString("<h1>Pages</h1><ul>")
	for _, info := range s.registry.All() {
		name := html.EscapeString(info.Name)
		title := html.EscapeString(info.Title)
		if title == "" {
			title = name
		}
		fmt.Fprintf(&b, `<li><a href="/pages/%s">%s</a> (%d elements)</li>`,
			name, title, info.Elements)
	}
	b.WriteString("</ul></body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *DevServer) handlePage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/pages/")
	name = strings.TrimSuffix(name, ".html")
	if name == "" || strings.ContainsAny(name, "/\\") {
		http.NotFound(w, r)
		return
	}

	info, ok := s.registry.Get(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	content, err := os.ReadFile(info.Path)
	if err != nil {
		s.log.Warn(r.Context(), err, "reading page", "page", name)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(injectReloadScript(content))
}

// handleAsset serves files from the configured asset paths. Only base names
// are accepted, which sidesteps traversal entirely.
func (s *DevServer) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/assets/")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}

	for _, root := range s.cfg.Pages.AssetPaths {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			http.ServeFile(w, r, path)
			return
		}
	}
	http.NotFound(w, r)
}

func (s *DevServer) handleWS(w http.ResponseWriter, r *http.Request) {
	if !checkOrigin(r, s.cfg.Server.Host, s.cfg.Server.Port, s.cfg.Server.AllowedOrigins) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}
	s.hub.ServeWS(w, r)
}

func (s *DevServer) handleAPIPages(w http.ResponseWriter, _ *http.Request) {
	type pageJSON struct {
		Name     string   `json:"name"`
		Title    string   `json:"title"`
		Modules  []string `json:"modules"`
		Elements int      `json:"elements"`
		Height   float64  `json:"height"`
	}

	pages := make([]pageJSON, 0)
	for _, info := range s.registry.All() {
		pages = append(pages, pageJSON{
			Name:     info.Name,
			Title:    info.Title,
			Modules:  info.Modules,
			Elements: info.Elements,
			Height:   info.Height,
		})
	}
	writeJSON(w, pages)
}

func (s *DevServer) handleAPIStats(w http.ResponseWriter, _ *http.Request) {
	stats := map[string]any{
		"pages":   s.registry.Count(),
		"clients": s.hub.ClientCount(),
	}
	if s.loop != nil {
		stats["frames"] = s.loop.Stats()
	}
	if s.state != nil {
		stats["values"] = s.state.Snapshot()
	}
	writeJSON(w, stats)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// reloadScript reconnects-and-reloads on any hub message.
const reloadScript = `<script>
(function() {
  var ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = function() { location.reload(); };
})();
</script>`

// injectReloadScript inserts the live-reload script before </body>, or
// appends it when the page has no closing body tag.
func injectReloadScript(content []byte) []byte {
	page := string(content)
	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		return []byte(page[:i] + reloadScript + page[i:])
	}
	return []byte(page + reloadScript)
}
