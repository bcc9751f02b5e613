// Package core provides the HTTP chassis for the disasterwatch API. It builds
// a chi router that serves both a standalone HTTP server and the Lambda
// adapter, and applies the cross-cutting concerns (panic recovery, request
// IDs, logging, CORS, compression, metrics) before requests reach handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"disasterwatch/internal/config"
	"disasterwatch/internal/types"
)

// MetricsCollector records API request telemetry.
type MetricsCollector interface {
	// RecordRequest records one request. endpoint is the matched route
	// pattern, not the raw path, to keep label cardinality bounded.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// Server holds every dependency the HTTP layer needs.
type Server struct {
	Config    *config.Config
	Repos     types.RepositoryRegistry
	Logger    *slog.Logger
	Validator *Validator
	Metrics   MetricsCollector

	// MetricsHandler, when set, is served at GET /metrics.
	MetricsHandler http.Handler
	HealthProbes   []HealthProbe

	// RouteRegistrars mount domain handlers under the API prefix. They are
	// populated by main so core does not import the handler packages.
	RouteRegistrars []func(r chi.Router)

	router *chi.Mux
}

// NewServer validates the required dependencies and prepares an empty router.
// Call MountRoutes after setting the optional fields.
func NewServer(cfg *config.Config, repos types.RepositoryRegistry, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if repos == nil {
		return nil, fmt.Errorf("repository registry must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Repos:     repos,
		Logger:    logger,
		Validator: NewValidator(),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the chi.Mux for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server resources. The repository registry is closed when
// it has a Close method, with or without an error result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.InfoContext(ctx, "server shutdown initiated")

	switch closer := s.Repos.(type) {
	case interface{ Close() error }:
		if err := closer.Close(); err != nil {
			s.Logger.ErrorContext(ctx, "error closing repository connections", "error", err)
			return fmt.Errorf("closing repository connections: %w", err)
		}
	case interface{ Close() }:
		closer.Close()
	}

	s.Logger.InfoContext(ctx, "server shutdown complete")
	return nil
}
