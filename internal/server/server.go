// Package server provides the HTTP server and routing for Precept.
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

	"github.com/aristath/precept/internal/config"
	"github.com/aristath/precept/internal/database"
	"github.com/aristath/precept/internal/modules/prefill"
	"github.com/aristath/precept/internal/modules/prefill/engine"
	prefillhandlers "github.com/aristath/precept/internal/modules/prefill/handlers"
	"github.com/aristath/precept/internal/modules/refdata"
	refdatahandlers "github.com/aristath/precept/internal/modules/refdata/handlers"
	"github.com/aristath/precept/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	DB          *database.DB
	Config      *config.Config
	Port        int
	DevMode     bool
	Pipeline    *engine.Pipeline
	Store       *refdata.Store
	RefdataRepo *refdata.Repository
	AuditRepo   *prefill.Repository
	RefreshJob  scheduler.Job
	Scheduler   *scheduler.Scheduler
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	db             *database.DB
	cfg            *config.Config
	pipeline       *engine.Pipeline
	store          *refdata.Store
	refdataRepo    *refdata.Repository
	auditRepo      *prefill.Repository
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	systemHandlers := NewSystemHandlers(
		cfg.Log,
		cfg.Config.DataDir,
		cfg.DB,
		cfg.Store,
		cfg.RefreshJob,
		cfg.Scheduler,
	)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		db:             cfg.DB,
		cfg:            cfg.Config,
		pipeline:       cfg.Pipeline,
		store:          cfg.Store,
		refdataRepo:    cfg.RefdataRepo,
		auditRepo:      cfg.AuditRepo,
		systemHandlers: systemHandlers,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Prefill module: recommendation pipeline + audit trail
		prefillHandler := prefillhandlers.NewHandler(s.pipeline, s.store, s.auditRepo, s.log)
		prefillHandler.RegisterRoutes(r)

		// Reference data module
		refdataHandler := refdatahandlers.NewHandler(s.refdataRepo, s.store, s.log)
		refdataHandler.RegisterRoutes(r)

		// System monitoring and operations
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
			r.Get("/disk", s.systemHandlers.HandleDiskUsage)

			// Manual operation triggers
			r.Post("/jobs/refdata-refresh", s.systemHandlers.HandleTriggerRefresh)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
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
