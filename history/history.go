package history

import (
	"context"
	"time"
)

// Entry is one history record for a successfully served AI request.
type Entry struct {
	// UserID identifies the requesting user, when known.
	UserID string

	// Service is the feature label, e.g. "detect" or "ocr".
	Service string

	// Fingerprint is the request fingerprint the result was served under.
	Fingerprint string

	// Result is the serialized result payload.
	Result []byte

	// CacheHit reports whether the result came from the cache.
	CacheHit bool

	// CreatedAt is when the result was produced.
	CreatedAt time.Time
}

// Recorder persists history entries.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a failed write is reported to the caller; it is never retried
//   by this package.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, entry Entry) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}
