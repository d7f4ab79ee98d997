// Package cache provides a TTL key/value store for AI request results.
//
// The store is content-agnostic: it never inspects, hashes, or deserializes
// payloads. Fingerprint construction belongs to the caller (the dispatch
// package). The package provides a Store interface with an in-memory
// implementation, lazy expiry, and administrative Delete/Clear/Sweep hooks.
package cache
