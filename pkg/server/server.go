// Package server exposes the skeleton pipeline over HTTP.
//
// Every endpoint under /v1 takes a flat text export as the request body and
// builds a fresh graph for the request, so handlers never share graph state.
//
//	GET  /healthz
//	GET  /metrics
//	POST /v1/stats
//	POST /v1/clean?min_length=&min_points=&prune_degree=&max_rounds=&scale=&refresh=
//	POST /v1/path?from=&to=   (or from_edge=&to_edge=)
//	POST /v1/dot?format=dot|svg&detailed=&cycles_only=&rankdir=
//
// Errors are JSON objects carrying the machine-readable code from
// [errs.Code] and the request ID.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/pipeline"
)

// Defaults applied by [Config.withDefaults].
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultMaxBodyBytes = 32 << 20
	DefaultTimeout      = 60 * time.Second
)

// Config holds the HTTP server settings.
type Config struct {
	Addr         string        `toml:"addr"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	Timeout      time.Duration `toml:"timeout"`
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Server serves the pipeline endpoints.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	logger  *log.Logger
	gather  prometheus.Gatherer
	handler http.Handler
}

// New builds a server around runner. A nil gatherer disables /metrics and a
// nil logger discards output.
func New(runner *pipeline.Runner, cfg Config, gather prometheus.Gatherer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		cfg:    cfg.withDefaults(),
		runner: runner,
		logger: logger,
		gather: gather,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.gather != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Timeout))
		r.Post("/stats", s.handleStats)
		r.Post("/clean", s.handleClean)
		r.Post("/path", s.handlePath)
		r.Post("/dot", s.handleDOT)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errs.New(errs.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:      "METHOD_NOT_ALLOWED",
			Message:   r.Method + " is not allowed on " + r.URL.Path,
			RequestID: RequestID(r.Context()),
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on the configured address until ctx is canceled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
