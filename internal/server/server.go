// Package server exposes suggestion streaming, skill-tree generation and
// layout over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/logging"
	"github.com/mezotv/skill-tree/internal/metrics"
	"github.com/mezotv/skill-tree/internal/skilltree"
	"github.com/mezotv/skill-tree/internal/suggest"
)

// Deps are the collaborators behind the routes.
type Deps struct {
	Suggest *suggest.Service
	Trees   skilltree.Source
	Layout  layout.Config
	Metrics *metrics.Collector
	Logger  *log.Logger

	// Model is reported by the health route.
	Model string
}

// Server is the skilltree HTTP API.
type Server struct {
	cfg  Config
	deps Deps
}

// New creates a server. A nil Metrics gets a fresh collector and a nil
// Logger discards output.
func New(cfg Config, deps Deps) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewCollector("skilltree")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Server{cfg: cfg, deps: deps}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.deps.Logger))
	r.Use(instrument(s.deps.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.cfg.MaxBodyBytes > 0 {
			r.Use(chimiddleware.RequestSize(s.cfg.MaxBodyBytes))
		}
		r.Post("/ai/suggest-jobs", s.suggestJobs)
		r.Post("/ai/job", s.job)
		r.Post("/layout", s.layoutGraph)
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down
// gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.deps.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
