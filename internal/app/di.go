// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	allowlistRepository "github.com/fhirflare/capfilter/internal/allowlist/repository"
	allowlistUseCase "github.com/fhirflare/capfilter/internal/allowlist/usecase"
	capabilityHTTP "github.com/fhirflare/capfilter/internal/capability/http"
	capabilityService "github.com/fhirflare/capfilter/internal/capability/service"
	capabilityUseCase "github.com/fhirflare/capfilter/internal/capability/usecase"
	"github.com/fhirflare/capfilter/internal/config"
	"github.com/fhirflare/capfilter/internal/database"
	"github.com/fhirflare/capfilter/internal/http"
	"github.com/fhirflare/capfilter/internal/metrics"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Metrics
	metricsProvider *metrics.Provider
	filterMetrics   metrics.FilterMetrics

	// Repositories
	allowlistRepo allowlistUseCase.AllowlistRepository

	// Services
	documentSource capabilityUseCase.DocumentSource

	// Use Cases
	allowlistUC  allowlistUseCase.AllowlistUseCase
	capabilityUC capabilityUseCase.CapabilityUseCase

	// Handlers and Servers
	metadataHandler *capabilityHTTP.MetadataHandler
	httpServer      *http.Server
	metricsServer   *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	metricsProviderInit sync.Once
	filterMetricsInit   sync.Once
	allowlistRepoInit   sync.Once
	documentSourceInit  sync.Once
	allowlistUCInit     sync.Once
	capabilityUCInit    sync.Once
	metadataHandlerInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the allow-list store connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// FilterMetrics returns the capability filter metrics recorder.
// Returns a no-op implementation when metrics are disabled.
func (c *Container) FilterMetrics() (metrics.FilterMetrics, error) {
	c.filterMetricsInit.Do(func() {
		fm, err := c.initFilterMetrics()
		if err != nil {
			c.initErrors["filterMetrics"] = err
			return
		}
		c.filterMetrics = fm
	})
	if storedErr, exists := c.initErrors["filterMetrics"]; exists {
		return nil, storedErr
	}
	return c.filterMetrics, nil
}

// AllowlistRepository returns the allow-list repository instance.
func (c *Container) AllowlistRepository() (allowlistUseCase.AllowlistRepository, error) {
	c.allowlistRepoInit.Do(func() {
		repo, err := c.initAllowlistRepository()
		if err != nil {
			c.initErrors["allowlistRepo"] = err
			return
		}
		c.allowlistRepo = repo
	})
	if storedErr, exists := c.initErrors["allowlistRepo"]; exists {
		return nil, storedErr
	}
	return c.allowlistRepo, nil
}

// DocumentSource returns the capability document source instance.
func (c *Container) DocumentSource() (capabilityUseCase.DocumentSource, error) {
	c.documentSourceInit.Do(func() {
		source, err := c.initDocumentSource()
		if err != nil {
			c.initErrors["documentSource"] = err
			return
		}
		c.documentSource = source
	})
	if storedErr, exists := c.initErrors["documentSource"]; exists {
		return nil, storedErr
	}
	return c.documentSource, nil
}

// AllowlistUseCase returns the allow-list use case instance.
func (c *Container) AllowlistUseCase() (allowlistUseCase.AllowlistUseCase, error) {
	c.allowlistUCInit.Do(func() {
		useCase, err := c.initAllowlistUseCase()
		if err != nil {
			c.initErrors["allowlistUseCase"] = err
			return
		}
		c.allowlistUC = useCase
	})
	if storedErr, exists := c.initErrors["allowlistUseCase"]; exists {
		return nil, storedErr
	}
	return c.allowlistUC, nil
}

// CapabilityUseCase returns the capability filter use case instance.
func (c *Container) CapabilityUseCase() (capabilityUseCase.CapabilityUseCase, error) {
	c.capabilityUCInit.Do(func() {
		useCase, err := c.initCapabilityUseCase()
		if err != nil {
			c.initErrors["capabilityUseCase"] = err
			return
		}
		c.capabilityUC = useCase
	})
	if storedErr, exists := c.initErrors["capabilityUseCase"]; exists {
		return nil, storedErr
	}
	return c.capabilityUC, nil
}

// MetadataHandler returns the metadata HTTP handler instance.
func (c *Container) MetadataHandler() (*capabilityHTTP.MetadataHandler, error) {
	c.metadataHandlerInit.Do(func() {
		handler, err := c.initMetadataHandler()
		if err != nil {
			c.initErrors["metadataHandler"] = err
			return
		}
		c.metadataHandler = handler
	})
	if storedErr, exists := c.initErrors["metadataHandler"]; exists {
		return nil, storedErr
	}
	return c.metadataHandler, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the allow-list store connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initFilterMetrics creates the filter metrics recorder.
func (c *Container) initFilterMetrics() (metrics.FilterMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpFilterMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for filter metrics: %w", err)
	}

	return metrics.NewFilterMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initAllowlistRepository creates the allow-list repository instance.
func (c *Container) initAllowlistRepository() (allowlistUseCase.AllowlistRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for allowlist repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return allowlistRepository.NewMySQLAllowlistRepository(db), nil
	case "postgres":
		return allowlistRepository.NewPostgreSQLAllowlistRepository(db), nil
	case "sqlite3":
		return allowlistRepository.NewSQLiteAllowlistRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initDocumentSource creates the capability document source instance.
func (c *Container) initDocumentSource() (capabilityUseCase.DocumentSource, error) {
	switch c.config.CapabilitySource {
	case config.SourceUpstream:
		return capabilityService.NewUpstreamSource(c.config.UpstreamBaseURL, c.config.UpstreamTimeout), nil
	case config.SourceFile:
		return capabilityService.NewFileSource(c.config.CapabilityFile), nil
	default:
		return nil, fmt.Errorf("unsupported capability source: %s", c.config.CapabilitySource)
	}
}

// initAllowlistUseCase creates the allow-list use case with all its dependencies.
func (c *Container) initAllowlistUseCase() (allowlistUseCase.AllowlistUseCase, error) {
	repo, err := c.AllowlistRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get repository for allowlist use case: %w", err)
	}

	filterMetrics, err := c.FilterMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get filter metrics for allowlist use case: %w", err)
	}

	return allowlistUseCase.NewAllowlistUseCase(
		repo,
		c.config.AllowlistQueryTimeout,
		c.Logger(),
		filterMetrics,
	), nil
}

// initCapabilityUseCase creates the capability filter use case with all its dependencies.
func (c *Container) initCapabilityUseCase() (capabilityUseCase.CapabilityUseCase, error) {
	source, err := c.DocumentSource()
	if err != nil {
		return nil, fmt.Errorf("failed to get document source for capability use case: %w", err)
	}

	allowlist, err := c.AllowlistUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get allowlist use case for capability use case: %w", err)
	}

	filterMetrics, err := c.FilterMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get filter metrics for capability use case: %w", err)
	}

	return capabilityUseCase.NewCapabilityUseCase(
		c.config.FilterEnabled,
		source,
		allowlist,
		c.Logger(),
		filterMetrics,
	)
}

// initMetadataHandler creates the metadata HTTP handler with all its dependencies.
func (c *Container) initMetadataHandler() (*capabilityHTTP.MetadataHandler, error) {
	useCase, err := c.CapabilityUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability use case for metadata handler: %w", err)
	}

	return capabilityHTTP.NewMetadataHandler(useCase, c.Logger()), nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	handler, err := c.MetadataHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata handler for http server: %w", err)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	if provider != nil {
		return http.NewServer(c.config, c.Logger(), handler, db, provider.MeterProvider()), nil
	}
	return http.NewServer(c.config, c.Logger(), handler, db, nil), nil
}
