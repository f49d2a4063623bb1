// Package api exposes the study clock over HTTP. Every payload travels
// in the {"success","data","error"} envelope the clients expect.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	"github.com/yifanzh/studyclock/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux      *http.ServeMux
	server   *http.Server
	logger   *slog.Logger
	metrics  observability.Metrics
	health   *observability.HealthRegistry
	sessions *SessionHandler
	tasks    *TaskHandler
	settings *SettingsHandler
	stats    *StatsHandler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Handlers bundles the per-context HTTP handlers.
type Handlers struct {
	Sessions *SessionHandler
	Tasks    *TaskHandler
	Settings *SettingsHandler
	Stats    *StatsHandler
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, handlers Handlers, health *observability.HealthRegistry, metrics observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		metrics:  metrics,
		health:   health,
		sessions: handlers.Sessions,
		tasks:    handlers.Tasks,
		settings: handlers.Settings,
		stats:    handlers.Stats,
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      requestMiddleware(logger, metrics, s.mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Sessions
	s.mux.HandleFunc("GET /api/v1/sessions/active", s.sessions.GetActive)
	s.mux.HandleFunc("GET /api/v1/sessions", s.sessions.History)
	s.mux.HandleFunc("GET /api/v1/sessions/stats", s.sessions.Stats)
	s.mux.HandleFunc("POST /api/v1/sessions", s.sessions.Start)
	s.mux.HandleFunc("POST /api/v1/sessions/{id}/pause", s.sessions.Pause)
	s.mux.HandleFunc("POST /api/v1/sessions/{id}/resume", s.sessions.Resume)
	s.mux.HandleFunc("POST /api/v1/sessions/{id}/complete", s.sessions.Complete)
	s.mux.HandleFunc("POST /api/v1/sessions/{id}/cancel", s.sessions.Cancel)
	s.mux.HandleFunc("POST /api/v1/sessions/{id}/heartbeat", s.sessions.Heartbeat)

	// Tasks
	s.mux.HandleFunc("GET /api/v1/tasks", s.tasks.List)
	s.mux.HandleFunc("GET /api/v1/tasks/stats", s.tasks.Stats)
	s.mux.HandleFunc("GET /api/v1/tasks/{id}", s.tasks.Get)
	s.mux.HandleFunc("POST /api/v1/tasks", s.tasks.Create)
	s.mux.HandleFunc("POST /api/v1/tasks/{id}/activate", s.tasks.Activate)
	s.mux.HandleFunc("POST /api/v1/tasks/{id}/toggle", s.tasks.Toggle)
	s.mux.HandleFunc("DELETE /api/v1/tasks/{id}", s.tasks.Delete)

	// Settings
	s.mux.HandleFunc("GET /api/v1/settings", s.settings.Get)
	s.mux.HandleFunc("PUT /api/v1/settings", s.settings.Update)
	s.mux.HandleFunc("POST /api/v1/settings/reset", s.settings.Reset)

	// Statistics and study records
	s.mux.HandleFunc("GET /api/v1/stats/summary", s.stats.Summary)
	s.mux.HandleFunc("GET /api/v1/stats/breakdown", s.stats.Breakdown)
	s.mux.HandleFunc("GET /api/v1/stats/daily", s.stats.Daily)
	s.mux.HandleFunc("GET /api/v1/stats/heatmap", s.stats.Heatmap)
	s.mux.HandleFunc("GET /api/v1/records", s.stats.ListRecords)
	s.mux.HandleFunc("POST /api/v1/records", s.stats.CreateRecord)
	s.mux.HandleFunc("DELETE /api/v1/records/{id}", s.stats.DeleteRecord)
	s.mux.HandleFunc("GET /api/v1/subjects", s.stats.Subjects)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	overall := s.health.GetOverallHealth(r.Context())
	status := http.StatusOK
	if overall.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, overall)
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		"addr", s.server.Addr,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// envelope is the wire shape of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeData writes a successful envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError writes a failed envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Error: message})
}

// writeDomainError translates a domain error into an HTTP status.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, sharedDomain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sharedDomain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sharedDomain.ErrState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
