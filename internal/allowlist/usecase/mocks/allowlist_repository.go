// Package mocks provides mock implementations for testing allow-list use cases.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAllowlistRepository is a mock implementation of AllowlistRepository for testing.
type MockAllowlistRepository struct {
	mock.Mock
}

// ListResourceTypes mocks the ListResourceTypes method of AllowlistRepository.
func (m *MockAllowlistRepository) ListResourceTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
