// Package resilience provides fault-isolation primitives for downstream AI
// calls.
//
// The central piece is a three-state circuit breaker (closed, open,
// half-open) gated by an explicit Allow / RecordSuccess / RecordFailure
// protocol, so callers that skip the protected operation (for example on a
// cache hit) never touch breaker state. Breakers are grouped per dependency
// name in a Registry with a fixed, pre-registered name set.
//
// The package also provides the supporting patterns applied around the
// downstream call itself:
//
//   - Retry: retries transient downstream failures with exponential backoff
//     and jitter. Breaker rejections are never retried.
//
//   - Timeout: bounds the downstream call; on expiry the wait is abandoned
//     and ErrTimeout is returned, which callers treat as a failure.
//
//   - Bulkhead: limits concurrent downstream calls to prevent resource
//     exhaustion while the dependency is slow.
//
// # Usage
//
//	reg := resilience.NewRegistry(resilience.BreakerConfig{
//	    FailureThreshold: 5,
//	    Cooldown:         30 * time.Second,
//	}, "ai-detect", "ai-ocr")
//
//	if !reg.Allow("ai-detect") {
//	    return ErrDependencyUnavailable
//	}
//	err := callDownstream(ctx)
//	if err != nil {
//	    reg.RecordFailure("ai-detect")
//	} else {
//	    reg.RecordSuccess("ai-detect")
//	}
package resilience
