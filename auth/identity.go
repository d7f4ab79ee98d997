package auth

import "time"

// Identity is the authenticated mobile user behind a request.
type Identity struct {
	// UserID is the stable user identifier from the token subject.
	UserID string

	// IssuedAt is when the token was issued.
	IssuedAt time.Time

	// ExpiresAt is when the token expires; zero means no expiry claim.
	ExpiresAt time.Time
}

// Expired reports whether the identity's token has expired.
func (id *Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}
