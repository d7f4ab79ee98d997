package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFeature is returned when the requested feature is not one
	// of the supported AI operations.
	ErrUnknownFeature = errors.New("dispatch: unknown feature")

	// ErrEmptyPayload is returned when the request carries no content.
	ErrEmptyPayload = errors.New("dispatch: empty input payload")

	// ErrDependencyUnavailable is returned when the circuit breaker fences
	// off the downstream dependency. The request was rejected without
	// invoking the AI service.
	ErrDependencyUnavailable = errors.New("dispatch: ai dependency unavailable")

	// ErrNilClient is returned by NewOrchestrator when no downstream
	// client is configured.
	ErrNilClient = errors.New("dispatch: nil client")
)

// DownstreamError wraps a failure from the AI service, including calls that
// exhausted their timeout or retry budget. It counts against the feature's
// circuit breaker.
type DownstreamError struct {
	// Feature is the operation that failed.
	Feature Feature

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *DownstreamError) Error() string {
	return fmt.Sprintf("dispatch: %s call failed: %v", e.Feature, e.Err)
}

// Unwrap returns the underlying error.
func (e *DownstreamError) Unwrap() error { return e.Err }
