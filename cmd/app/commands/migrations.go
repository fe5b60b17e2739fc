package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/fhirflare/capfilter/internal/app"
	"github.com/fhirflare/capfilter/internal/config"
)

// RunMigrations executes database migrations based on the configured driver.
// Determines migration path from DBDriver (postgresql, mysql or sqlite) and applies
// all pending migrations. Returns nil if no migrations to apply.
func RunMigrations() error {
	cfg := config.Load()

	// Create container just for logger
	container := app.NewContainer(cfg)
	logger := container.Logger()

	logger.Info("running database migrations",
		slog.String("driver", cfg.DBDriver),
	)

	// Determine migration path based on driver
	migrationsPath := "file://migrations/postgresql"
	switch cfg.DBDriver {
	case "mysql":
		migrationsPath = "file://migrations/mysql"
	case "sqlite3":
		migrationsPath = "file://migrations/sqlite"
	}

	m, err := migrate.New(migrationsPath, migrateDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrateDSN returns the connection string in the URL form golang-migrate
// expects. The sqlite3 driver takes a plain file path at runtime, so the
// scheme is added here when missing.
func migrateDSN(cfg *config.Config) string {
	if cfg.DBDriver == "sqlite3" && !strings.Contains(cfg.DBConnectionString, "://") {
		return "sqlite3://" + cfg.DBConnectionString
	}
	return cfg.DBConnectionString
}
