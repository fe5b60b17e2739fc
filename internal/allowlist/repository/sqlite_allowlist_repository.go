package repository

import (
	"context"
	"database/sql"

	apperrors "github.com/fhirflare/capfilter/internal/errors"
)

// SQLiteAllowlistRepository reads allow-list entries from a SQLite file.
// This matches the original deployment, where the allow-list lives in the
// FHIR server's instance database.
type SQLiteAllowlistRepository struct {
	db *sql.DB
}

// ListResourceTypes returns every resource_type value currently stored in
// the whitelist_config table. NULL rows are skipped.
func (s *SQLiteAllowlistRepository) ListResourceTypes(ctx context.Context) ([]string, error) {
	query := `SELECT resource_type FROM whitelist_config`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query allowlist")
	}
	defer rows.Close()

	var resourceTypes []string
	for rows.Next() {
		var resourceType sql.NullString
		if err := rows.Scan(&resourceType); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan allowlist row")
		}
		if !resourceType.Valid {
			continue
		}
		resourceTypes = append(resourceTypes, resourceType.String)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate allowlist rows")
	}

	return resourceTypes, nil
}

// NewSQLiteAllowlistRepository creates a new SQLite allow-list repository.
func NewSQLiteAllowlistRepository(db *sql.DB) *SQLiteAllowlistRepository {
	return &SQLiteAllowlistRepository{db: db}
}
