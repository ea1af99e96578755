// Package server exposes solver runs over HTTP so a remote visualizer can
// drive a search one checkpoint at a time.
//
// Routes:
//
//	POST   /runs               create a run (generated grid or posted graph)
//	POST   /runs/{id}/step     advance ?count=N checkpoints (default 1, "all")
//	GET    /runs/{id}          current snapshot
//	GET    /runs/{id}/graph    graph document
//	GET    /runs/{id}/dot      Graphviz source of the current snapshot
//	DELETE /runs/{id}          drop the run
//	GET    /healthz            liveness and build info
//	GET    /metrics            Prometheus metrics, when configured
//
// Errors are JSON objects {"code": ..., "message": ...}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gridpath/pkg/config"
	"github.com/matzehuels/gridpath/pkg/observability"
	"github.com/matzehuels/gridpath/pkg/session"
)

const (
	maxBodyBytes    = 10 << 20
	maxStepsPerCall = 1 << 20
	janitorInterval = time.Minute
	shutdownTimeout = 5 * time.Second
)

// Server holds the live runs and the defaults new runs start from.
type Server struct {
	cfg     config.Config
	store   *session.MemoryStore
	logger  *log.Logger
	metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithStore replaces the session store.
func WithStore(store *session.MemoryStore) Option {
	return func(s *Server) { s.store = store }
}

// New creates a server. cfg supplies the grid and solver defaults and the
// session limits.
func New(cfg config.Config, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = session.NewMemoryStore(session.WithCapacity(cfg.Server.MaxRuns))
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.createRun)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getRun)
			r.Delete("/", s.deleteRun)
			r.Post("/step", s.stepRun)
			r.Get("/graph", s.getGraph)
			r.Get("/dot", s.getDOT)
		})
	})
	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go session.RunJanitor(janitorCtx, s.store, janitorInterval, func(n int) {
		s.logger.Debug("expired runs removed", "count", n)
	})

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// instrument logs every request and reports it to the HTTP hooks, labelled
// by route pattern so run IDs do not explode metric cardinality.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(began)

		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "elapsed", elapsed)
	})
}
