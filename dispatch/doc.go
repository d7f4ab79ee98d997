// Package dispatch orchestrates AI feature requests.
//
// The Orchestrator is the single entry point between an inbound feature
// request (object detection, OCR, audio transcription, visual question
// answering) and the downstream AI service. For each request it:
//
//   - computes a deterministic fingerprint from the feature and input,
//   - serves from the result cache when possible (a cache hit never touches
//     the circuit breaker - a cached result cannot signal dependency
//     health),
//   - consults the per-feature circuit breaker and fails fast with
//     ErrDependencyUnavailable when the dependency is fenced off,
//   - invokes the downstream client bounded by a timeout, optionally behind
//     a bulkhead and a retry policy,
//   - records the outcome to metrics and breaker state, caches successful
//     results under a per-feature TTL, and hands the result to the history
//     recorder without blocking the response.
//
// Aside from input validation, only ErrDependencyUnavailable and
// DownstreamError reach the caller; cache and history failures are absorbed
// with best-effort logging.
package dispatch
