package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	allowlistUseCase "github.com/fhirflare/capfilter/internal/allowlist/usecase"
	capabilityDomain "github.com/fhirflare/capfilter/internal/capability/domain"
	apperrors "github.com/fhirflare/capfilter/internal/errors"
	"github.com/fhirflare/capfilter/internal/metrics"
)

// capabilityUseCase applies allow-list filtering to the host-produced
// capability document. The enabled toggle is captured once at construction
// and immutable for the process lifetime; everything else is per-request,
// so the use case is safe under concurrent invocation.
type capabilityUseCase struct {
	enabled   bool
	source    DocumentSource
	allowlist allowlistUseCase.AllowlistUseCase
	logger    *slog.Logger
	metrics   metrics.FilterMetrics
}

// Metadata obtains the unfiltered capability document and post-processes it:
//
//  1. Toggle off: pass the document through unchanged.
//  2. Toggle on: load a fresh allow-list snapshot.
//  3. Empty allow-list (empty table or store error): pass through (fail-open).
//  4. Otherwise remove, per interaction group, every resource descriptor
//     whose type is not in the allow-list.
//
// A document that is not a CapabilityStatement also passes through
// unchanged; the request is never failed by the filtering step.
func (u *capabilityUseCase) Metadata(ctx context.Context) ([]byte, error) {
	start := time.Now()
	document, outcome, err := u.metadata(ctx)

	u.metrics.RecordMetadataRequest(ctx, outcome)
	u.metrics.RecordMetadataDuration(ctx, time.Since(start), outcome)

	return document, err
}

func (u *capabilityUseCase) metadata(ctx context.Context) ([]byte, string, error) {
	// The unfiltered document always comes first; filtering is a
	// post-processing step and never changes how the host computes
	// its own description.
	document, err := u.source.Fetch(ctx)
	if err != nil {
		return nil, metrics.OutcomeError, err
	}

	if !u.enabled {
		u.logger.Debug("capability filtering disabled, returning unfiltered document")
		return document, metrics.OutcomePassthroughDisabled, nil
	}

	statement, err := capabilityDomain.ParseCapabilityStatement(document)
	if err != nil {
		// Unexpected shape is recovered by pass-through, never an error
		// to the caller.
		u.logger.Warn("capability document has unexpected shape, skipping filtering",
			slog.Any("error", err),
		)
		return document, metrics.OutcomePassthroughShape, nil
	}

	allowlist := u.allowlist.Load(ctx)
	if allowlist.IsEmpty() {
		// Either the store is empty on purpose or it failed and the load
		// degraded to an empty set; both mean "show everything".
		u.logger.Warn("allowlist is empty, returning unfiltered document")
		return document, metrics.OutcomePassthroughEmptyList, nil
	}

	removed := statement.FilterResources(allowlist)
	u.metrics.RecordResourcesRemoved(ctx, int64(removed))
	u.logger.Info("capability document filtered",
		slog.Int("allowlist_entries", len(allowlist)),
		slog.Int("resources_removed", removed),
	)
	if u.logger.Enabled(ctx, slog.LevelDebug) {
		u.logger.Debug("filtered capability resources",
			slog.Any("kept_per_group", statement.ResourceTypes()),
		)
	}

	filtered, err := json.Marshal(statement)
	if err != nil {
		// Should not happen for a document that just parsed; recover by
		// pass-through to keep the endpoint available.
		u.logger.Error("failed to serialize filtered document, returning unfiltered",
			slog.Any("error", err),
		)
		return document, metrics.OutcomePassthroughShape, nil
	}

	return filtered, metrics.OutcomeFiltered, nil
}

// NewCapabilityUseCase creates the capability filter. The enabled toggle is
// passed explicitly so the component stays testable without environment
// mutation.
func NewCapabilityUseCase(
	enabled bool,
	source DocumentSource,
	allowlist allowlistUseCase.AllowlistUseCase,
	logger *slog.Logger,
	filterMetrics metrics.FilterMetrics,
) (CapabilityUseCase, error) {
	if source == nil {
		return nil, apperrors.New("document source is required")
	}
	if allowlist == nil {
		return nil, apperrors.New("allowlist use case is required")
	}

	logger.Info("capability filter created", slog.Bool("filter_enabled", enabled))

	return &capabilityUseCase{
		enabled:   enabled,
		source:    source,
		allowlist: allowlist,
		logger:    logger,
		metrics:   filterMetrics,
	}, nil
}
