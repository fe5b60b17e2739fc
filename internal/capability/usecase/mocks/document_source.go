// Package mocks provides mock implementations for testing capability use cases.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	allowlistDomain "github.com/fhirflare/capfilter/internal/allowlist/domain"
)

// MockDocumentSource is a mock implementation of DocumentSource for testing.
type MockDocumentSource struct {
	mock.Mock
}

// Fetch mocks the Fetch method of DocumentSource.
func (m *MockDocumentSource) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockAllowlistUseCase is a mock implementation of AllowlistUseCase for testing.
type MockAllowlistUseCase struct {
	mock.Mock
}

// Load mocks the Load method of AllowlistUseCase.
func (m *MockAllowlistUseCase) Load(ctx context.Context) allowlistDomain.Allowlist {
	args := m.Called(ctx)
	return args.Get(0).(allowlistDomain.Allowlist)
}
