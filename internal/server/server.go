// Package server provides the HTTP API over the analyzer and the snapshot store.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/modules/statistics"
	"github.com/aristath/tefas/internal/services/analyzer"
)

// Analyzer runs fund pipelines on demand
type Analyzer interface {
	AnalyzeWithin(ctx context.Context, code string, w analyzer.Window) (analyzer.Report, error)
	Compare(ctx context.Context, codes []string) ([]analyzer.Result, error)
}

// SnapshotStore reads stored snapshots
type SnapshotStore interface {
	History(ctx context.Context, fundCode string, limit int) ([]statistics.Snapshot, error)
	Latest(ctx context.Context, fundCode string) (*statistics.Snapshot, error)
	Funds(ctx context.Context) ([]string, error)
}

// HealthChecker reports whether a dependency is usable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Analyzer  Analyzer
	Snapshots SnapshotStore // optional; history routes answer 503 without it
	Database  HealthChecker // optional
	Port      int
	DevMode   bool

	// System status and job triggers
	DataDir   string
	Databases []SizedDatabase
	Jobs      []Job
	Schedule  JobSchedule // optional; adds next run times to the status
	// RequestTimeout bounds a single request. A live analysis renders a page
	// in a browser, so this must exceed the fetch timeout.
	RequestTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	analyzer  Analyzer
	snapshots SnapshotStore
	database  HealthChecker
	port      int
	dataDir   string
	databases []SizedDatabase
	jobs      []Job
	schedule  JobSchedule
	started   time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}

	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		analyzer:  cfg.Analyzer,
		snapshots: cfg.Snapshots,
		database:  cfg.Database,
		port:      cfg.Port,
		dataDir:   cfg.DataDir,
		databases: cfg.Databases,
		jobs:      cfg.Jobs,
		schedule:  cfg.Schedule,
		started:   time.Now(),
	}

	s.setupMiddleware(cfg.DevMode, cfg.RequestTimeout)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool, timeout time.Duration) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(timeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/funds", func(r chi.Router) {
		r.Get("/", s.handleListFunds)
		r.Get("/compare", s.handleCompare)
		r.Get("/{code}/statistics", s.handleStatistics)
		r.Get("/{code}/history", s.handleHistory)
		r.Get("/{code}/latest", s.handleLatest)
	})

	s.router.Route("/api/system", func(r chi.Router) {
		r.Get("/status", s.handleSystemStatus)
		r.Post("/jobs/{name}", s.handleTriggerJob)
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
