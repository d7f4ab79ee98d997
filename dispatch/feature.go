package dispatch

import (
	"context"
	"time"
)

// Feature identifies an AI operation.
type Feature string

// Supported AI features.
const (
	FeatureDetection     Feature = "detect"
	FeatureOCR           Feature = "ocr"
	FeatureTranscription Feature = "transcribe"
	FeatureVQA           Feature = "vqa"
)

// Features returns all supported features.
func Features() []Feature {
	return []Feature{FeatureDetection, FeatureOCR, FeatureTranscription, FeatureVQA}
}

// Valid reports whether f is a supported feature.
func (f Feature) Valid() bool {
	switch f {
	case FeatureDetection, FeatureOCR, FeatureTranscription, FeatureVQA:
		return true
	}
	return false
}

// BreakerName returns the circuit breaker dependency name for the feature,
// e.g. "ai-detect". Each feature gets its own breaker for fault isolation.
func (f Feature) BreakerName() string {
	return "ai-" + string(f)
}

// BreakerNames returns the breaker names for all supported features, for
// pre-registering the registry.
func BreakerNames() []string {
	features := Features()
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.BreakerName()
	}
	return names
}

// Input is the user-submitted content for a feature request.
type Input struct {
	// Payload is the raw image or audio bytes.
	Payload []byte

	// Filename is the client-reported name, passed through to the
	// downstream service. It does not participate in fingerprinting.
	Filename string

	// Language is the OCR language hint, empty otherwise.
	Language string

	// Question is the VQA question, empty otherwise.
	Question string

	// UserID identifies the requesting user for history recording, when
	// known. It does not participate in fingerprinting.
	UserID string
}

// Result is a completed feature request.
type Result struct {
	// Feature is the operation that produced the result.
	Feature Feature

	// Payload is the serialized result: a detection list, extracted text,
	// or a transcription.
	Payload []byte

	// CacheHit reports whether the result was served from the cache.
	CacheHit bool

	// Duration is the downstream wall-clock time; zero on a cache hit.
	Duration time.Duration
}

// Client invokes the downstream AI service. The transport behind it (gRPC
// in the reference deployment) is opaque to the orchestrator.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Invoke must honor cancellation and deadlines; the orchestrator
//   bounds every call with its configured timeout.
// - Errors: any non-nil error counts as a downstream failure for breaker
//   purposes.
type Client interface {
	Invoke(ctx context.Context, feature Feature, input Input) ([]byte, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, feature Feature, input Input) ([]byte, error)

// Invoke calls f.
func (f ClientFunc) Invoke(ctx context.Context, feature Feature, input Input) ([]byte, error) {
	return f(ctx, feature, input)
}
