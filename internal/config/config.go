// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/jellydator/validation"
	"github.com/joho/godotenv"
)

// Capability document source kinds.
const (
	SourceUpstream = "upstream"
	SourceFile     = "file"
)

// envFilterEnabled is the feature flag controlling capability filtering.
// Only a case-insensitive "true" enables the filter; anything else
// (including unset) disables it.
const envFilterEnabled = "FEATURE_WHITELIST_ENABLED"

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// DBDriver is the allow-list store driver ("postgres", "mysql" or "sqlite3").
	DBDriver string
	// DBConnectionString is the connection string for the allow-list store.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the store.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// AllowlistQueryTimeout bounds the allow-list SELECT so a slow store
	// cannot stall metadata responses.
	AllowlistQueryTimeout time.Duration

	// FilterEnabled is the capability filter toggle, captured once at startup.
	FilterEnabled bool

	// CapabilitySource selects where the unfiltered capability document comes
	// from ("upstream" or "file").
	CapabilitySource string
	// UpstreamBaseURL is the base URL of the backing FHIR server.
	UpstreamBaseURL string
	// UpstreamTimeout is the HTTP client timeout for upstream metadata fetches.
	UpstreamTimeout time.Duration
	// CapabilityFile is the path of a capability document for the file source.
	CapabilityFile string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// RateLimitEnabled indicates whether per-IP rate limiting of the metadata
	// endpoint is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Allow-list store configuration. The original deployment keeps the
		// allow-list in a SQLite file next to the FHIR server instance.
		DBDriver:             env.GetString("DB_DRIVER", "sqlite3"),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", "./instance/fhir_ig.db"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 10),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 2),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		AllowlistQueryTimeout: env.GetDuration("ALLOWLIST_QUERY_TIMEOUT_SECONDS", 5, time.Second),

		FilterEnabled: filterEnabledFromEnv(),

		// Capability document source
		CapabilitySource: env.GetString("CAPABILITY_SOURCE", SourceUpstream),
		UpstreamBaseURL:  env.GetString("UPSTREAM_BASE_URL", "http://localhost:8000/fhir"),
		UpstreamTimeout:  env.GetDuration("UPSTREAM_TIMEOUT_SECONDS", 10, time.Second),
		CapabilityFile:   env.GetString("CAPABILITY_FILE", "./capability.json"),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Rate Limiting (metadata endpoint, IP-based)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "capfilter"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// Validate checks the configuration for values that would prevent startup.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DBDriver, validation.Required, validation.In("postgres", "mysql", "sqlite3")),
		validation.Field(&c.DBConnectionString, validation.Required),
		validation.Field(&c.CapabilitySource, validation.Required, validation.In(SourceUpstream, SourceFile)),
		validation.Field(&c.UpstreamBaseURL, validation.Required.When(c.CapabilitySource == SourceUpstream)),
		validation.Field(&c.CapabilityFile, validation.Required.When(c.CapabilitySource == SourceFile)),
		validation.Field(&c.MetricsPort, validation.Min(1), validation.Max(65535)),
	)
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// filterEnabledFromEnv resolves the filter toggle. strconv-style boolean
// parsing is deliberately not used: the contract is that only the literal
// string "true" (any case) enables filtering, and every other value,
// including "1" and unset, leaves it disabled.
func filterEnabledFromEnv() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(envFilterEnabled)), "true")
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
