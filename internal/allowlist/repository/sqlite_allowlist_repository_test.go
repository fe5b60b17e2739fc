package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirflare/capfilter/internal/testutil"
)

func TestSQLiteAllowlistRepository_ListResourceTypes(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewSQLiteAllowlistRepository(db)

	rows := sqlmock.NewRows([]string{"resource_type"}).
		AddRow("Patient").
		AddRow("Observation")
	mock.ExpectQuery(`SELECT resource_type FROM whitelist_config`).WillReturnRows(rows)

	resourceTypes, err := repo.ListResourceTypes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Patient", "Observation"}, resourceTypes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteAllowlistRepository_ListResourceTypes_QueryError(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewSQLiteAllowlistRepository(db)

	mock.ExpectQuery(`SELECT resource_type FROM whitelist_config`).WillReturnError(assert.AnError)

	_, err := repo.ListResourceTypes(context.Background())
	assert.Error(t, err)
}
