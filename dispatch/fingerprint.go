package dispatch

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
)

// fingerprintPrefix namespaces cache keys so the store can be shared with
// other subsystems.
const fingerprintPrefix = "ai"

// Fingerprint derives the deterministic cache key for a feature request.
//
// The key covers the feature, the raw payload, and the request parameters
// that change the answer (OCR language, VQA question). Filename and user
// identity are deliberately excluded: the same image submitted under a
// different name, or by a different user, yields the same result.
//
// Every field is length-prefixed before hashing so field boundaries are
// unambiguous: a payload that happens to contain another field's bytes can
// never collide with the request that carries them separately.
//
// The format is "ai:<feature>:<hex digest>". Identical inputs always map to
// the same key, so concurrent identical requests converge on one cache slot.
func Fingerprint(feature Feature, input Input) string {
	h := sha256.New()
	hashField(h, []byte(feature))
	hashField(h, input.Payload)
	hashField(h, []byte(input.Language))
	hashField(h, []byte(input.Question))
	return fmt.Sprintf("%s:%s:%s", fingerprintPrefix, feature, hex.EncodeToString(h.Sum(nil)))
}

// hashField writes a length-prefixed field into the digest.
func hashField(h hash.Hash, field []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(field)))
	h.Write(n[:])
	h.Write(field)
}
