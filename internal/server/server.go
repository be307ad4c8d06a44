// Package server exposes the diagram pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness and build information
//	POST /v1/graph    document -> graph state
//	POST /v1/route    document + measured boxes + scale -> paths
//	POST /v1/render   document -> one rendered artifact (?format=svg)
//
// Every route runs through the shared [pipeline.Runner], so repeated
// requests for the same document are answered from its cache.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stagegraph/pkg/config"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/observability"
	"github.com/matzehuels/stagegraph/pkg/pipeline"
	"github.com/matzehuels/stagegraph/pkg/route"
)

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.Server
	spacing  layout.Spacing
	geometry route.Geometry
	logger   *log.Logger
	router   chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithConfig applies the listener, geometry and spacing settings of cfg.
func WithConfig(cfg config.Config) Option {
	return func(s *Server) {
		s.cfg = cfg.Server
		s.spacing = cfg.Spacing()
		s.geometry = cfg.RouteGeometry()
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	def := config.Default()
	s := &Server{
		runner:   runner,
		cfg:      def.Server,
		spacing:  def.Spacing(),
		geometry: def.RouteGeometry(),
		logger:   runner.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(s.cfg.MaxBodyBytes))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/graph", s.handleGraph)
		r.Post("/route", s.handleRoute)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
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
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// instrument logs each request and reports it to the HTTP hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		pattern := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			pattern = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, pattern, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", pattern,
			"status", status,
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", elapsed)
	})
}
