package usecase

import (
	"context"
	"log/slog"
	"time"

	allowlistDomain "github.com/fhirflare/capfilter/internal/allowlist/domain"
	"github.com/fhirflare/capfilter/internal/metrics"
)

// allowlistUseCase implements AllowlistUseCase on top of a repository.
type allowlistUseCase struct {
	repo         AllowlistRepository
	queryTimeout time.Duration
	logger       *slog.Logger
	metrics      metrics.FilterMetrics
}

// Load reads all stored resource types, trims them, discards empty values
// and returns the resulting set. The read is a new snapshot on every call
// so external edits to the table take effect on the next request without
// a restart.
//
// Any repository failure degrades to an empty allow-list instead of an
// error: an empty set means "show everything" downstream, so a store
// outage leaves the metadata endpoint available rather than failing it
// or wrongly hiding all resources.
func (u *allowlistUseCase) Load(ctx context.Context) allowlistDomain.Allowlist {
	if u.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.queryTimeout)
		defer cancel()
	}

	values, err := u.repo.ListResourceTypes(ctx)
	if err != nil {
		u.logger.Error("failed to load allowlist, falling back to empty set",
			slog.Any("error", err),
		)
		u.metrics.RecordStoreError(ctx)
		return allowlistDomain.Allowlist{}
	}

	allowlist := allowlistDomain.NewAllowlist(values)
	u.logger.Debug("allowlist loaded",
		slog.Int("entry_count", len(allowlist)),
	)
	return allowlist
}

// NewAllowlistUseCase creates an allow-list use case. queryTimeout bounds
// each load; zero disables the bound.
func NewAllowlistUseCase(
	repo AllowlistRepository,
	queryTimeout time.Duration,
	logger *slog.Logger,
	filterMetrics metrics.FilterMetrics,
) AllowlistUseCase {
	return &allowlistUseCase{
		repo:         repo,
		queryTimeout: queryTimeout,
		logger:       logger,
		metrics:      filterMetrics,
	}
}
