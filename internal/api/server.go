// Package api provides HTTP REST API handlers for serve mode.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
	"github.com/diligent-ai/diligent/internal/service"
)

// Server exposes analysis and debate over HTTP.
type Server struct {
	router     chi.Router
	analyzer   *service.Analyzer
	debates    *service.DebateOrchestrator
	registry   core.BackendRegistry
	store      core.ResultStore // nil when persistence is disabled
	descriptor func(name string) (core.BackendDescriptor, bool)
	defaults   func() []core.BackendDescriptor
	logger     *logging.Logger

	requestTimeout time.Duration
	corsOrigins    []string
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithStore enables result persistence.
func WithStore(store core.ResultStore) ServerOption {
	return func(s *Server) { s.store = store }
}

// WithRequestTimeout bounds each request. Backend fan-outs are slow by
// nature, so the default is generous.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.requestTimeout = d }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) { s.corsOrigins = origins }
}

// NewServer creates the API server. descriptor and defaults resolve
// backend names from configuration; the handlers never touch config
// directly.
func NewServer(
	analyzer *service.Analyzer,
	debates *service.DebateOrchestrator,
	registry core.BackendRegistry,
	descriptor func(name string) (core.BackendDescriptor, bool),
	defaults func() []core.BackendDescriptor,
	logger *logging.Logger,
	opts ...ServerOption,
) *Server {
	s := &Server{
		analyzer:       analyzer,
		debates:        debates,
		registry:       registry,
		descriptor:     descriptor,
		defaults:       defaults,
		logger:         logger,
		requestTimeout: 10 * time.Minute,
		corsOrigins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(s.loggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/backends", s.handleListBackends)

		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", s.handleCreateAnalysis)
			r.Get("/", s.handleListAnalyses)
			r.Get("/{analysisID}", s.handleGetAnalysis)
		})

		r.Route("/debates", func(r chi.Router) {
			r.Post("/", s.handleCreateDebate)
			r.Get("/{debateID}", s.handleGetDebate)
		})
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// respondError sends a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleListBackends reports registered backends and their liveness.
func (s *Server) handleListBackends(w http.ResponseWriter, r *http.Request) {
	available := make(map[string]bool)
	for _, name := range s.registry.Available(r.Context()) {
		available[name] = true
	}

	var out []backendStatusDTO
	for _, name := range s.registry.List() {
		out = append(out, backendStatusDTO{
			Name:      name,
			Available: available[name],
		})
	}
	respondJSON(w, http.StatusOK, out)
}
