// Package testutil provides shared helpers for unit tests.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// NewMockDB creates a sqlmock-backed database handle for repository tests.
// The handle is closed automatically when the test finishes.
func NewMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err, "failed to create sqlmock database")

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db, mock
}
