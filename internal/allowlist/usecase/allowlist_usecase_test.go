package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fhirflare/capfilter/internal/allowlist/usecase/mocks"
	"github.com/fhirflare/capfilter/internal/metrics"
)

func newTestUseCase(repo AllowlistRepository, timeout time.Duration) AllowlistUseCase {
	logger := slog.New(slog.DiscardHandler)
	return NewAllowlistUseCase(repo, timeout, logger, metrics.NewNoOpFilterMetrics())
}

func TestAllowlistUseCase_Load(t *testing.T) {
	repo := new(mocks.MockAllowlistRepository)
	repo.On("ListResourceTypes", mock.Anything).
		Return([]string{"Patient", "Observation"}, nil)

	useCase := newTestUseCase(repo, 0)
	allowlist := useCase.Load(context.Background())

	assert.Len(t, allowlist, 2)
	assert.True(t, allowlist.Contains("Patient"))
	assert.True(t, allowlist.Contains("Observation"))
	repo.AssertExpectations(t)
}

func TestAllowlistUseCase_Load_TrimsStoredValues(t *testing.T) {
	repo := new(mocks.MockAllowlistRepository)
	repo.On("ListResourceTypes", mock.Anything).
		Return([]string{" Patient ", "", "  "}, nil)

	useCase := newTestUseCase(repo, 0)
	allowlist := useCase.Load(context.Background())

	assert.Len(t, allowlist, 1)
	assert.True(t, allowlist.Contains("Patient"))
}

func TestAllowlistUseCase_Load_EmptyStore(t *testing.T) {
	repo := new(mocks.MockAllowlistRepository)
	repo.On("ListResourceTypes", mock.Anything).Return([]string{}, nil)

	useCase := newTestUseCase(repo, 0)
	allowlist := useCase.Load(context.Background())

	assert.True(t, allowlist.IsEmpty())
}

func TestAllowlistUseCase_Load_StoreErrorReturnsEmptySet(t *testing.T) {
	repo := new(mocks.MockAllowlistRepository)
	repo.On("ListResourceTypes", mock.Anything).Return(nil, assert.AnError)

	useCase := newTestUseCase(repo, 0)

	// Must not panic and must not surface the error.
	var allowlist = useCase.Load(context.Background())

	assert.NotNil(t, allowlist)
	assert.True(t, allowlist.IsEmpty())
	repo.AssertExpectations(t)
}

func TestAllowlistUseCase_Load_AppliesQueryTimeout(t *testing.T) {
	repo := new(mocks.MockAllowlistRepository)
	repo.On("ListResourceTypes", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Second
	})).Return([]string{"Patient"}, nil)

	useCase := newTestUseCase(repo, time.Second)
	allowlist := useCase.Load(context.Background())

	assert.True(t, allowlist.Contains("Patient"))
	repo.AssertExpectations(t)
}

func TestAllowlistUseCase_Load_FreshSnapshotPerCall(t *testing.T) {
	repo := new(mocks.MockAllowlistRepository)
	repo.On("ListResourceTypes", mock.Anything).
		Return([]string{"Patient"}, nil).Once()
	repo.On("ListResourceTypes", mock.Anything).
		Return([]string{"Patient", "Observation"}, nil).Once()

	useCase := newTestUseCase(repo, 0)

	first := useCase.Load(context.Background())
	second := useCase.Load(context.Background())

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
	repo.AssertExpectations(t)
}
