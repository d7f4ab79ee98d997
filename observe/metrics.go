package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Request status labels.
const (
	StatusSuccess  = "success"
	StatusFailure  = "failure"
	StatusRejected = "rejected"
)

// Outcome describes one completed AI request for metrics purposes. It is
// ephemeral and never persisted.
type Outcome struct {
	// Service is the downstream operation label, e.g. "detect" or "ocr".
	Service string

	// Status is one of StatusSuccess, StatusFailure, StatusRejected.
	Status string

	// CacheHit reports whether the result came from the cache.
	CacheHit bool

	// Duration is the wall-clock time spent producing the result.
	Duration time.Duration
}

// Metrics records operational signals for AI request dispatch.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; recording never blocks a request.
// - Errors: implementations must not panic.
// - Gauges: breaker state and failure ratio have last-write-wins semantics.
type Metrics interface {
	// RecordRequest records a completed request outcome.
	RecordRequest(ctx context.Context, outcome Outcome)

	// RecordBreakerState records the breaker state ordinal for a dependency
	// (0=closed, 1=open, 2=half-open).
	RecordBreakerState(ctx context.Context, name string, state int)

	// RecordFailureRatio records the breaker's rolling failure ratio
	// (0.0-1.0) for a dependency.
	RecordFailureRatio(ctx context.Context, name string, ratio float64)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	requestTotal metric.Int64Counter
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	durationHist metric.Float64Histogram
	breakerState metric.Int64Gauge
	breakerRatio metric.Float64Gauge
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	requestTotal, err := meter.Int64Counter(
		"ai.request.total",
		metric.WithDescription("Total number of AI service requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"ai.cache.hits",
		metric.WithDescription("Total number of AI result cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"ai.cache.misses",
		metric.WithDescription("Total number of AI result cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"ai.request.duration",
		metric.WithDescription("Duration of AI service requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	breakerState, err := meter.Int64Gauge(
		"ai.breaker.state",
		metric.WithDescription("Circuit breaker state (0=closed, 1=open, 2=half-open)"),
	)
	if err != nil {
		return nil, err
	}

	breakerRatio, err := meter.Float64Gauge(
		"ai.breaker.failure_ratio",
		metric.WithDescription("Circuit breaker failure ratio over the rolling window (0.0-1.0)"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		requestTotal: requestTotal,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
		durationHist: durationHist,
		breakerState: breakerState,
		breakerRatio: breakerRatio,
	}, nil
}

// RecordRequest records a completed request outcome.
func (m *metricsImpl) RecordRequest(ctx context.Context, outcome Outcome) {
	cacheLabel := "miss"
	if outcome.CacheHit {
		cacheLabel = "hit"
	}

	serviceAttr := attribute.String("service", outcome.Service)

	if outcome.CacheHit {
		m.cacheHits.Add(ctx, 1, metric.WithAttributes(serviceAttr))
	} else {
		m.cacheMisses.Add(ctx, 1, metric.WithAttributes(serviceAttr))
	}

	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		serviceAttr,
		attribute.String("status", outcome.Status),
	))

	m.durationHist.Record(ctx, outcome.Duration.Seconds(), metric.WithAttributes(
		serviceAttr,
		attribute.String("status", outcome.Status),
		attribute.String("cache", cacheLabel),
	))
}

// RecordBreakerState records the breaker state ordinal for a dependency.
func (m *metricsImpl) RecordBreakerState(ctx context.Context, name string, state int) {
	m.breakerState.Record(ctx, int64(state), metric.WithAttributes(
		attribute.String("name", name),
	))
}

// RecordFailureRatio records the breaker's rolling failure ratio.
func (m *metricsImpl) RecordFailureRatio(ctx context.Context, name string, ratio float64) {
	m.breakerRatio.Record(ctx, ratio, metric.WithAttributes(
		attribute.String("name", name),
	))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordRequest(ctx context.Context, outcome Outcome)                 {}
func (noopMetrics) RecordBreakerState(ctx context.Context, name string, state int)     {}
func (noopMetrics) RecordFailureRatio(ctx context.Context, name string, ratio float64) {}

// NewNoopMetrics returns a Metrics that discards everything.
func NewNoopMetrics() Metrics {
	return noopMetrics{}
}
