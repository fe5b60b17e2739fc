package repository

import (
	"context"
	"database/sql"

	apperrors "github.com/fhirflare/capfilter/internal/errors"
)

// MySQLAllowlistRepository reads allow-list entries from MySQL.
type MySQLAllowlistRepository struct {
	db *sql.DB
}

// ListResourceTypes returns every resource_type value currently stored in
// the whitelist_config table. NULL rows are skipped.
func (m *MySQLAllowlistRepository) ListResourceTypes(ctx context.Context) ([]string, error) {
	query := `SELECT resource_type FROM whitelist_config`

	rows, err := m.db.QueryContext(ctx, query)
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

// NewMySQLAllowlistRepository creates a new MySQL allow-list repository.
func NewMySQLAllowlistRepository(db *sql.DB) *MySQLAllowlistRepository {
	return &MySQLAllowlistRepository{db: db}
}
