package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fhirflare/capfilter/internal/app"
	"github.com/fhirflare/capfilter/internal/config"
)

// RunShowAllowlist prints the resource types currently held in the allow-list
// store. Useful for checking what the filter will retain before flipping the
// feature flag on. Supports both text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunShowAllowlist(ctx context.Context, format string, io IOTuple) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get allow-list use case from container
	allowlistUseCase, err := container.AllowlistUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize allowlist use case: %w", err)
	}

	allowlist := allowlistUseCase.Load(ctx)
	values := allowlist.Values()

	logger.Info("allow-list loaded", slog.Int("count", len(values)))

	if format == "json" {
		return outputAllowlistJSON(io, values)
	}
	outputAllowlistText(io, values)
	return nil
}

// outputAllowlistText outputs the allow-list in human-readable text format.
func outputAllowlistText(io IOTuple, values []string) {
	if len(values) == 0 {
		fmt.Fprintln(io.Writer, "Allow-list is empty: all resource types pass through unfiltered")
		return
	}

	fmt.Fprintf(io.Writer, "Allow-list contains %d resource type(s):\n", len(values))
	for _, value := range values {
		fmt.Fprintf(io.Writer, "  %s\n", value)
	}
}

// outputAllowlistJSON outputs the allow-list in JSON format for machine consumption.
func outputAllowlistJSON(io IOTuple, values []string) error {
	result := map[string]interface{}{
		"count":          len(values),
		"resource_types": values,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(io.Writer, string(jsonBytes))
	return nil
}
