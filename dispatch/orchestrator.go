package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/assistkit/aidispatch/auth"
	"github.com/assistkit/aidispatch/cache"
	"github.com/assistkit/aidispatch/history"
	"github.com/assistkit/aidispatch/observe"
	"github.com/assistkit/aidispatch/resilience"
)

// Config configures the Orchestrator. Client is required; everything else
// has a usable default.
type Config struct {
	// Client invokes the downstream AI service.
	Client Client

	// Cache stores feature results keyed by fingerprint.
	// Default: an in-memory store.
	Cache cache.Store

	// Breakers is the circuit breaker registry. When nil, a registry is
	// built with one breaker per supported feature using Breaker.
	Breakers *resilience.Registry

	// Breaker configures the default per-feature breakers. Ignored when
	// Breakers is set.
	Breaker resilience.BreakerConfig

	// TTL maps features to cache lifetimes.
	// Default: DefaultTTLPolicy.
	TTL TTLPolicy

	// CallTimeout bounds each downstream attempt.
	// Default: 30 seconds
	CallTimeout time.Duration

	// Retry, when non-nil, retries failed downstream attempts. Breaker
	// rejections are never retried.
	Retry *resilience.RetryConfig

	// MaxConcurrent, when positive, caps in-flight downstream calls with a
	// bulkhead. Zero disables the cap.
	MaxConcurrent int

	// MaxWait is how long a call may wait for a bulkhead slot.
	// Default: 0 (fail immediately)
	MaxWait time.Duration

	// Metrics records request outcomes and breaker gauges.
	// Default: no-op.
	Metrics observe.Metrics

	// Logger receives structured request logs.
	// Default: no-op.
	Logger observe.Logger

	// Tracer creates a span per processed request.
	// Default: no-op.
	Tracer trace.Tracer

	// History, when non-nil, receives an entry for every served result.
	History *history.AsyncRecorder
}

// Orchestrator coordinates cache, circuit breakers, the downstream AI
// client, metrics, and history recording for feature requests.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: Process honors cancellation; each downstream attempt is bounded
//   by the configured call timeout.
// - Errors: callers see only ErrUnknownFeature, ErrEmptyPayload,
//   ErrDependencyUnavailable, or a DownstreamError. Cache and history
//   trouble is logged and absorbed.
type Orchestrator struct {
	client   Client
	cache    cache.Store
	breakers *resilience.Registry
	ttl      TTLPolicy
	timeout  *resilience.Timeout
	retry    *resilience.Retry
	bulkhead *resilience.Bulkhead
	metrics  observe.Metrics
	logger   observe.Logger
	tracer   trace.Tracer
	history  *history.AsyncRecorder

	now func() time.Time
}

// NewOrchestrator creates an Orchestrator, applying defaults for any
// dependency left unset.
func NewOrchestrator(config Config) (*Orchestrator, error) {
	if config.Client == nil {
		return nil, ErrNilClient
	}

	// Apply defaults
	store := config.Cache
	if store == nil {
		store = cache.NewMemoryStore()
	}
	breakers := config.Breakers
	if breakers == nil {
		breakers = resilience.NewRegistry(config.Breaker, BreakerNames()...)
	}
	ttl := config.TTL
	if ttl == (TTLPolicy{}) {
		ttl = DefaultTTLPolicy()
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = observe.NewNoopMetrics()
	}
	logger := config.Logger
	if logger == nil {
		logger = observe.NewNoopLogger()
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("dispatch")
	}

	var retry *resilience.Retry
	if config.Retry != nil {
		retry = resilience.NewRetry(*config.Retry)
	}
	var bulkhead *resilience.Bulkhead
	if config.MaxConcurrent > 0 {
		bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: config.MaxConcurrent,
			MaxWait:       config.MaxWait,
		})
	}

	return &Orchestrator{
		client:   config.Client,
		cache:    store,
		breakers: breakers,
		ttl:      ttl,
		timeout:  resilience.NewTimeout(resilience.TimeoutConfig{Timeout: config.CallTimeout}),
		retry:    retry,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger.WithService("dispatch"),
		tracer:   tracer,
		history:  config.History,
		now:      time.Now,
	}, nil
}

// Process serves one feature request: cache first, then the downstream AI
// service gated by the feature's circuit breaker.
//
// A cache hit returns immediately without consulting the breaker. On a miss,
// a breaker rejection returns ErrDependencyUnavailable without touching the
// cache. A downstream failure counts against the breaker and surfaces as a
// DownstreamError; a downstream success is recorded, cached under the
// feature's TTL, and handed to the history recorder before returning.
func (o *Orchestrator) Process(ctx context.Context, feature Feature, input Input) (Result, error) {
	if !feature.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFeature, string(feature))
	}
	if len(input.Payload) == 0 {
		return Result{}, ErrEmptyPayload
	}
	if input.UserID == "" {
		// History records are stamped with the authenticated user when the
		// caller did not set one explicitly.
		input.UserID = auth.UserIDFromContext(ctx)
	}

	ctx, span := o.tracer.Start(ctx, "dispatch.Process",
		trace.WithAttributes(attribute.String("ai.feature", string(feature))))
	defer span.End()

	key := Fingerprint(feature, input)

	if payload, ok := o.cache.Get(ctx, key); ok {
		span.SetAttributes(attribute.Bool("ai.cache_hit", true))
		o.metrics.RecordRequest(ctx, observe.Outcome{
			Service:  string(feature),
			Status:   observe.StatusSuccess,
			CacheHit: true,
		})
		o.publishBreakerGauges(ctx, feature.BreakerName())
		o.logger.Debug(ctx, "served from cache",
			observe.Field{Key: "feature", Value: string(feature)},
			observe.Field{Key: "fingerprint", Value: key})
		o.recordHistory(feature, input, key, payload, true)
		return Result{Feature: feature, Payload: payload, CacheHit: true}, nil
	}
	span.SetAttributes(attribute.Bool("ai.cache_hit", false))

	name := feature.BreakerName()
	if !o.breakers.Allow(name) {
		o.metrics.RecordRequest(ctx, observe.Outcome{
			Service: string(feature),
			Status:  observe.StatusRejected,
		})
		o.publishBreakerGauges(ctx, name)
		o.logger.Warn(ctx, "request rejected, dependency fenced off",
			observe.Field{Key: "feature", Value: string(feature)},
			observe.Field{Key: "breaker", Value: name})
		return Result{}, fmt.Errorf("%w: %s", ErrDependencyUnavailable, name)
	}

	start := o.now()
	payload, err := o.invoke(ctx, feature, input)
	duration := o.now().Sub(start)

	if errors.Is(err, context.Canceled) {
		// The inbound request went away; that says nothing about dependency
		// health, so the breaker window stays untouched. If this call held
		// the half-open probe, release it or the breaker would reject
		// everything forever.
		o.breakers.CancelProbe(name)
		return Result{}, err
	}
	if errors.Is(err, resilience.ErrBulkheadFull) {
		// Local saturation, not a dependency fault: the breaker window
		// stays untouched, but an admitted probe must be released.
		o.breakers.CancelProbe(name)
		o.metrics.RecordRequest(ctx, observe.Outcome{
			Service: string(feature),
			Status:  observe.StatusRejected,
		})
		o.publishBreakerGauges(ctx, name)
		o.logger.Warn(ctx, "request rejected, concurrency limit reached",
			observe.Field{Key: "feature", Value: string(feature)})
		return Result{}, fmt.Errorf("%w: concurrency limit reached", ErrDependencyUnavailable)
	}
	if err != nil {
		o.breakers.RecordFailure(name)
		o.metrics.RecordRequest(ctx, observe.Outcome{
			Service:  string(feature),
			Status:   observe.StatusFailure,
			Duration: duration,
		})
		o.publishBreakerGauges(ctx, name)
		span.RecordError(err)
		o.logger.Error(ctx, "downstream call failed",
			observe.Field{Key: "feature", Value: string(feature)},
			observe.Field{Key: "duration_ms", Value: duration.Milliseconds()},
			observe.Field{Key: "error", Value: err.Error()})
		return Result{}, &DownstreamError{Feature: feature, Err: err}
	}

	o.breakers.RecordSuccess(name)
	if ttl := o.ttl.For(feature); ttl > 0 {
		if cerr := o.cache.Set(ctx, key, payload, ttl); cerr != nil {
			// A failed write degrades to a future miss, never a request
			// failure.
			o.logger.Warn(ctx, "cache write failed",
				observe.Field{Key: "feature", Value: string(feature)},
				observe.Field{Key: "fingerprint", Value: key},
				observe.Field{Key: "error", Value: cerr.Error()})
		}
	}
	o.metrics.RecordRequest(ctx, observe.Outcome{
		Service:  string(feature),
		Status:   observe.StatusSuccess,
		Duration: duration,
	})
	o.publishBreakerGauges(ctx, name)
	o.logger.Info(ctx, "request served",
		observe.Field{Key: "feature", Value: string(feature)},
		observe.Field{Key: "duration_ms", Value: duration.Milliseconds()})
	o.recordHistory(feature, input, key, payload, false)

	return Result{Feature: feature, Payload: payload, Duration: duration}, nil
}

// BreakerState exposes the state and failure ratio of a feature's breaker,
// for health surfaces.
func (o *Orchestrator) BreakerState(feature Feature) (resilience.State, float64, bool) {
	return o.breakers.CurrentState(feature.BreakerName())
}

// invoke runs the downstream call through the configured resilience chain:
// each attempt is timeout-bounded and, when a bulkhead is configured, holds
// a slot only for the duration of the attempt.
func (o *Orchestrator) invoke(ctx context.Context, feature Feature, input Input) ([]byte, error) {
	var payload []byte

	attempt := func(ctx context.Context) error {
		run := func(ctx context.Context) error {
			p, err := o.callOnce(ctx, feature, input)
			if err != nil {
				return err
			}
			payload = p
			return nil
		}
		if o.bulkhead != nil {
			return o.bulkhead.Execute(ctx, run)
		}
		return run(ctx)
	}

	var err error
	if o.retry != nil {
		err = o.retry.Execute(ctx, attempt)
	} else {
		err = attempt(ctx)
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// callOnce performs a single timeout-bounded client call. The result is
// confined to this attempt: if the timeout abandons the call, the late
// result is discarded rather than shared with a subsequent attempt.
func (o *Orchestrator) callOnce(ctx context.Context, feature Feature, input Input) ([]byte, error) {
	var payload []byte
	err := o.timeout.Execute(ctx, func(ctx context.Context) error {
		p, err := o.client.Invoke(ctx, feature, input)
		if err != nil {
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// publishBreakerGauges pushes the breaker's current state and failure ratio.
// Called after every recorded outcome so the gauges track the request flow.
func (o *Orchestrator) publishBreakerGauges(ctx context.Context, name string) {
	state, ratio, ok := o.breakers.CurrentState(name)
	if !ok {
		return
	}
	o.metrics.RecordBreakerState(ctx, name, int(state))
	o.metrics.RecordFailureRatio(ctx, name, ratio)
}

// recordHistory hands the served result to the history recorder, when one
// is configured. Enqueue never blocks the request path.
func (o *Orchestrator) recordHistory(feature Feature, input Input, key string, payload []byte, cacheHit bool) {
	if o.history == nil {
		return
	}
	o.history.Enqueue(history.Entry{
		UserID:      input.UserID,
		Service:     string(feature),
		Fingerprint: key,
		Result:      payload,
		CacheHit:    cacheHit,
		CreatedAt:   o.now(),
	})
}
