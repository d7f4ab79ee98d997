package dispatch

import "time"

// Default cache lifetimes per feature. Detection results go stale as scenes
// change; OCR and VQA answers are stable properties of the input and keep
// longer.
const (
	DefaultDetectionTTL     = 1 * time.Hour
	DefaultOCRTTL           = 2 * time.Hour
	DefaultTranscriptionTTL = 30 * time.Minute
	DefaultVQATTL           = 24 * time.Hour
)

// TTLPolicy maps a feature to the cache lifetime of its results.
// A zero or negative lifetime disables caching for that feature.
type TTLPolicy struct {
	Detection     time.Duration
	OCR           time.Duration
	Transcription time.Duration
	VQA           time.Duration

	// Max, when positive, caps every lifetime. Lets an operator bound
	// staleness globally without retuning each feature.
	Max time.Duration
}

// DefaultTTLPolicy returns the production cache lifetimes.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Detection:     DefaultDetectionTTL,
		OCR:           DefaultOCRTTL,
		Transcription: DefaultTranscriptionTTL,
		VQA:           DefaultVQATTL,
	}
}

// For returns the cache lifetime for the feature, clamped to Max when set.
// Unknown features are never cached.
func (p TTLPolicy) For(feature Feature) time.Duration {
	var ttl time.Duration
	switch feature {
	case FeatureDetection:
		ttl = p.Detection
	case FeatureOCR:
		ttl = p.OCR
	case FeatureTranscription:
		ttl = p.Transcription
	case FeatureVQA:
		ttl = p.VQA
	default:
		return 0
	}
	if p.Max > 0 && ttl > p.Max {
		return p.Max
	}
	return ttl
}
