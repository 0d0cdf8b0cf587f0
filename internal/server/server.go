// Package server exposes the solve pipeline over HTTP.
//
// Routes:
//
//	POST /v1/solve        solve a diagram or layout
//	GET  /v1/runs         list recent runs, newest first
//	GET  /v1/runs/{id}    fetch one run with its moves
//	GET  /v1/version      build information
//	GET  /healthz         liveness probe
//	GET  /metrics         Prometheus metrics (when configured)
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

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/history"
	"github.com/matzehuels/burrow/pkg/observability"
	"github.com/matzehuels/burrow/pkg/pipeline"
)

// Defaults applied by New for unset Options fields.
const (
	DefaultSolveTimeout = time.Minute
	DefaultReadTimeout  = 10 * time.Second
	shutdownTimeout     = 15 * time.Second
)

// Options configures a Server.
type Options struct {
	Runner  *pipeline.Runner
	History history.Store
	Catalog burrow.Catalog

	// Metrics, if set, is served on /metrics.
	Metrics http.Handler

	// Memoize and Bound are the search settings for requests that leave
	// them unset.
	Memoize bool
	Bound   int

	// SolveTimeout caps the search time of a single request.
	SolveTimeout time.Duration
	ReadTimeout  time.Duration

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	runner       *pipeline.Runner
	store        history.Store
	catalog      burrow.Catalog
	memoize      bool
	bound        int
	metrics      http.Handler
	solveTimeout time.Duration
	readTimeout  time.Duration
	logger       *log.Logger
}

// New creates a server. A nil Runner gets an uncached runner, a nil History
// an in-memory store shared with that runner.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.History == nil {
		opts.History = history.NewMemoryStore(1000)
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.History, opts.Logger)
	}
	if opts.Catalog == nil {
		opts.Catalog = burrow.DefaultCatalog()
	}
	if opts.SolveTimeout <= 0 {
		opts.SolveTimeout = DefaultSolveTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return &Server{
		runner:       opts.Runner,
		store:        opts.History,
		catalog:      opts.Catalog,
		memoize:      opts.Memoize,
		bound:        opts.Bound,
		metrics:      opts.Metrics,
		solveTimeout: opts.SolveTimeout,
		readTimeout:  opts.ReadTimeout,
		logger:       opts.Logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/version", s.handleVersion)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.readTimeout,
		ReadTimeout:       s.readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe reports every response to the HTTP hooks and the debug log,
// labelled by route pattern rather than raw path.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
