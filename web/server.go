package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"giveaway-grid/fetcher"
	"giveaway-grid/render"
	"giveaway-grid/results"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
)

//go:embed static
var staticFiles embed.FS

// Options configures the web front-end
type Options struct {
	Fetcher        fetcher.Fetcher
	MaxPages       int
	RequestTimeout time.Duration
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server serves the results page and drives one controller per websocket
type Server struct {
	opts     Options
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a new Server instance
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxPages < 1 {
		opts.MaxPages = results.DefaultMaxPages
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(s.logger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// the embed directive guarantees the directory exists
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleSocket)

	r.Group(func(r chi.Router) {
		r.Use(securityHeaders)
		r.Get("/", s.handleIndex)
		r.Get("/results", s.handleResults)
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("web server stopped")
	return nil
}

func (s *Server) newController(grid *render.Grid, logger *slog.Logger) *results.Controller {
	return results.NewController(s.opts.Fetcher, grid,
		results.WithMaxPages(s.opts.MaxPages),
		results.WithTimeout(s.opts.RequestTimeout),
		results.WithLogger(logger),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Page(w, render.PageData{MaxPages: s.opts.MaxPages}); err != nil {
		s.logger.Error("error rendering page", "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
	}
}

// handleResults runs one synchronous fetch-then-render cycle for clients without a socket.
// With fragment=1 only the grid contents are returned.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	grid := render.NewGrid(logger)
	ctrl := s.newController(grid, logger)

	err := ctrl.Submit(r.Context(), r.URL.Query().Get("numpages"))
	ctrl.Wait()
	snap := grid.Snapshot()

	status := http.StatusOK
	switch {
	case errors.Is(err, results.ErrInvalidPageCount):
		status = http.StatusBadRequest
	case snap.State == results.StateError:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Results-State", snap.State.String())
	w.WriteHeader(status)

	if r.URL.Query().Get("fragment") == "1" {
		w.Write([]byte(snap.HTML))
		return
	}
	if err := render.Page(w, render.PageData{MaxPages: s.opts.MaxPages, Grid: snap.HTML}); err != nil {
		logger.Error("error rendering page", "error", err)
	}
}

// checkOrigin accepts same-host websocket upgrades and explicitly listed origins.
// A "*" entry opens CORS only; it never admits a foreign page to /ws.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.opts.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
