package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// CustomLoggerMiddleware logs HTTP requests with structured attributes.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.String("request_id", requestid.Get(c)),
		)
	}
}

// healthHandler is a simple liveness check.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness based on the allow-list store connection.
// The store being down does not fail readiness: the filter degrades to
// pass-through, so the service can still serve metadata.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db != nil {
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			s.logger.Warn("allowlist store unreachable", slog.Any("error", err))
		}
	}
	c.JSON(200, gin.H{"status": "ready"})
}
