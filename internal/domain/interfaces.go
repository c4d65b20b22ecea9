// Package domain defines core domain types and interfaces for the name availability checker.
package domain

import (
	"context"
	"time"
)

// Checker determines availability of a batch of names against one source.
// Implementations never return per-name failures; a name that could not be
// checked gets an unavailable verdict.
type Checker interface {
	// Source returns the source this checker reports verdicts for.
	Source() Source

	// Check returns the verdicts for every name in the batch, in batch order.
	// Once ctx is canceled it stops and returns only the verdicts completed
	// before the cancellation.
	Check(ctx context.Context, names []string) []Verdict
}

// ResultStore persists verdict records keyed by name.
type ResultStore interface {
	// MergeAndPersist overlays records onto the stored set (update-or-append)
	// and persists the full result.
	MergeAndPersist(ctx context.Context, records []Record) error

	// Load returns every stored record.
	Load(ctx context.Context) ([]Record, error)
}

// RateLimiter defines the interface for pacing outbound API requests.
// Implementations control request throughput using token bucket or similar algorithms.
type RateLimiter interface {
	// Wait blocks until a token is available or the context is canceled.
	// Returns an error if the context is canceled or times out.
	Wait(ctx context.Context) error
}

// MetricsRecorder receives pipeline measurements.
type MetricsRecorder interface {
	RecordVerdict(source Source, available bool)
	RecordHTTPStatus(source Source, statusCode int)
	RecordRateLimited(source Source)
	RecordRetriesExhausted(source Source)
	RecordRequestError(source Source)
	RecordLatency(source Source, d time.Duration)
	RecordBatch(names int)
	RecordMerged(records int)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

var _ MetricsRecorder = NopMetrics{}

// RecordVerdict implements MetricsRecorder.
func (NopMetrics) RecordVerdict(Source, bool) {}

// RecordHTTPStatus implements MetricsRecorder.
func (NopMetrics) RecordHTTPStatus(Source, int) {}

// RecordRateLimited implements MetricsRecorder.
func (NopMetrics) RecordRateLimited(Source) {}

// RecordRetriesExhausted implements MetricsRecorder.
func (NopMetrics) RecordRetriesExhausted(Source) {}

// RecordRequestError implements MetricsRecorder.
func (NopMetrics) RecordRequestError(Source) {}

// RecordLatency implements MetricsRecorder.
func (NopMetrics) RecordLatency(Source, time.Duration) {}

// RecordBatch implements MetricsRecorder.
func (NopMetrics) RecordBatch(int) {}

// RecordMerged implements MetricsRecorder.
func (NopMetrics) RecordMerged(int) {}
