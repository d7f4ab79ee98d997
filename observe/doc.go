// Package observe provides the observability stack for AI request dispatch:
// OpenTelemetry tracing and metrics behind a single Observer, plus a
// structured JSON logger.
//
// The Metrics interface carries the operational signals of the dispatch
// core: request duration and count by service, status, and cache result;
// cache hit/miss counters; and last-write-wins gauges for circuit breaker
// state and failure ratio.
//
// Exporters are selected by name (prometheus, otlp, stdout, none) so the
// same binary can serve a Prometheus scrape endpoint in production and dump
// to stdout in development.
package observe
