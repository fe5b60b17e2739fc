package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metadata request outcomes recorded as the "outcome" label.
const (
	OutcomeFiltered             = "filtered"
	OutcomePassthroughDisabled  = "passthrough_disabled"
	OutcomePassthroughEmptyList = "passthrough_empty_allowlist"
	OutcomePassthroughShape     = "passthrough_unexpected_shape"
	OutcomeError                = "error"
)

// FilterMetrics defines the interface for recording capability filter metrics.
// Implementations track metadata request outcomes, removed resource counts,
// and allow-list store failures.
type FilterMetrics interface {
	// RecordMetadataRequest records one handled metadata request with its outcome.
	RecordMetadataRequest(ctx context.Context, outcome string)

	// RecordMetadataDuration records how long a metadata request took end to end.
	RecordMetadataDuration(ctx context.Context, duration time.Duration, outcome string)

	// RecordResourcesRemoved records how many resource descriptors a single
	// filtering pass removed from the capability document.
	RecordResourcesRemoved(ctx context.Context, count int64)

	// RecordStoreError records one failed allow-list load. Store failures are
	// recovered as an empty allow-list, so this counter is the operational
	// signal that distinguishes a broken store from an intentionally empty one.
	RecordStoreError(ctx context.Context)
}

// filterMetrics implements FilterMetrics using OpenTelemetry metrics.
type filterMetrics struct {
	requestCounter  metric.Int64Counter
	durationHisto   metric.Float64Histogram
	removedCounter  metric.Int64Counter
	storeErrCounter metric.Int64Counter
}

// NewFilterMetrics creates a new FilterMetrics implementation using the provided meter provider.
// The namespace parameter is used as a prefix for all metric names.
// Returns error if meters cannot be initialized.
func NewFilterMetrics(meterProvider metric.MeterProvider, namespace string) (FilterMetrics, error) {
	meter := meterProvider.Meter(namespace)

	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_metadata_requests_total", namespace),
		metric.WithDescription("Total number of capability metadata requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_metadata_request_duration_seconds", namespace),
		metric.WithDescription("Duration of capability metadata requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	removedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_resources_removed_total", namespace),
		metric.WithDescription("Total number of resource descriptors removed by filtering"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create removed counter: %w", err)
	}

	storeErrCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_allowlist_store_errors_total", namespace),
		metric.WithDescription("Total number of allow-list store load failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store error counter: %w", err)
	}

	return &filterMetrics{
		requestCounter:  requestCounter,
		durationHisto:   durationHisto,
		removedCounter:  removedCounter,
		storeErrCounter: storeErrCounter,
	}, nil
}

// RecordMetadataRequest increments the request counter with the outcome label.
func (f *filterMetrics) RecordMetadataRequest(ctx context.Context, outcome string) {
	f.requestCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordMetadataDuration records the request duration in seconds with the outcome label.
func (f *filterMetrics) RecordMetadataDuration(ctx context.Context, duration time.Duration, outcome string) {
	f.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordResourcesRemoved adds to the removed-descriptor counter.
func (f *filterMetrics) RecordResourcesRemoved(ctx context.Context, count int64) {
	if count <= 0 {
		return
	}
	f.removedCounter.Add(ctx, count)
}

// RecordStoreError increments the store error counter.
func (f *filterMetrics) RecordStoreError(ctx context.Context) {
	f.storeErrCounter.Add(ctx, 1)
}

// NoOpFilterMetrics is a no-op implementation of FilterMetrics for when metrics are disabled.
type NoOpFilterMetrics struct{}

// NewNoOpFilterMetrics creates a no-op FilterMetrics implementation.
func NewNoOpFilterMetrics() FilterMetrics {
	return &NoOpFilterMetrics{}
}

// RecordMetadataRequest does nothing when metrics are disabled.
func (n *NoOpFilterMetrics) RecordMetadataRequest(ctx context.Context, outcome string) {
	// No-op
}

// RecordMetadataDuration does nothing when metrics are disabled.
func (n *NoOpFilterMetrics) RecordMetadataDuration(
	ctx context.Context,
	duration time.Duration,
	outcome string,
) {
	// No-op
}

// RecordResourcesRemoved does nothing when metrics are disabled.
func (n *NoOpFilterMetrics) RecordResourcesRemoved(ctx context.Context, count int64) {
	// No-op
}

// RecordStoreError does nothing when metrics are disabled.
func (n *NoOpFilterMetrics) RecordStoreError(ctx context.Context) {
	// No-op
}
