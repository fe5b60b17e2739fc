// Package repository implements read-only persistence access for the
// capability allow-list. The allow-list table is administered by an external
// process; this package only reads it.
package repository

import (
	"context"
	"database/sql"

	apperrors "github.com/fhirflare/capfilter/internal/errors"
)

// PostgreSQLAllowlistRepository reads allow-list entries from PostgreSQL.
type PostgreSQLAllowlistRepository struct {
	db *sql.DB
}

// ListResourceTypes returns every resource_type value currently stored in
// the whitelist_config table. NULL rows are skipped. Values are returned
// raw; normalization is the caller's responsibility.
func (p *PostgreSQLAllowlistRepository) ListResourceTypes(ctx context.Context) ([]string, error) {
	query := `SELECT resource_type FROM whitelist_config`

	rows, err := p.db.QueryContext(ctx, query)
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

// NewPostgreSQLAllowlistRepository creates a new PostgreSQL allow-list repository.
func NewPostgreSQLAllowlistRepository(db *sql.DB) *PostgreSQLAllowlistRepository {
	return &PostgreSQLAllowlistRepository{db: db}
}
