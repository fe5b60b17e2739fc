// Package http provides the HTTP server serving the filtered metadata endpoint.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	capabilityHTTP "github.com/fhirflare/capfilter/internal/capability/http"
	"github.com/fhirflare/capfilter/internal/config"
	"github.com/fhirflare/capfilter/internal/metrics"
	"go.opentelemetry.io/otel/metric"
)

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
	db     *sql.DB
}

// NewServer creates a new HTTP server and registers the metadata routes.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	metadataHandler *capabilityHTTP.MetadataHandler,
	db *sql.DB,
	meterProvider metric.MeterProvider,
) *Server {
	s := &Server{
		logger: logger,
		db:     db,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	metadata := router.Group("/")
	if cfg.RateLimitEnabled {
		metadata.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}
	metadata.GET("/metadata", metadataHandler.GetHandler)
	// The FHIR base path alias some deployments route through.
	metadata.GET("/fhir/metadata", metadataHandler.GetHandler)

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
