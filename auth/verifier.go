package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken is returned when no bearer token is present.
	ErrMissingToken = errors.New("auth: missing bearer token")

	// ErrTokenExpired is returned for a structurally valid but expired token.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenInvalid is returned for malformed, mis-signed, or otherwise
	// rejected tokens.
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// VerifierConfig configures the token verifier.
type VerifierConfig struct {
	// Issuer, when set, is required to match the token's iss claim.
	Issuer string

	// Audience, when set, is required to appear in the token's aud claim.
	Audience string

	// UserClaim is the claim holding the user identifier.
	// Default: "sub"
	UserClaim string
}

// KeyProvider resolves the signing key for a token's key ID.
type KeyProvider interface {
	Key(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider serves a single shared HMAC key regardless of key ID.
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a provider for the given key.
func NewStaticKeyProvider(key []byte) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// Key returns the static key.
func (p *StaticKeyProvider) Key(_ context.Context, _ string) (any, error) {
	return p.key, nil
}

// TokenVerifier validates mobile client bearer tokens and extracts the
// user identity.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: verification failures map to ErrMissingToken, ErrTokenExpired,
//   or ErrTokenInvalid; the raw library error is wrapped underneath.
type TokenVerifier struct {
	config VerifierConfig
	keys   KeyProvider
	parser *jwt.Parser
}

// NewTokenVerifier creates a verifier using the given key provider.
func NewTokenVerifier(config VerifierConfig, keys KeyProvider) *TokenVerifier {
	// Apply defaults
	if config.UserClaim == "" {
		config.UserClaim = "sub"
	}

	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512", "RS256", "ES256"}),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &TokenVerifier{
		config: config,
		keys:   keys,
		parser: jwt.NewParser(opts...),
	}
}

// Verify validates a raw token string and returns the identity it carries.
func (v *TokenVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := v.parser.Parse(tokenString, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	userID, _ := claims[v.config.UserClaim].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing %q claim", ErrTokenInvalid, v.config.UserClaim)
	}

	id := &Identity{UserID: userID}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}
	return id, nil
}

// VerifyHeader validates an Authorization-style header value, stripping the
// "Bearer " prefix.
func (v *TokenVerifier) VerifyHeader(ctx context.Context, header string) (*Identity, error) {
	const prefix = "Bearer "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return nil, ErrMissingToken
	}
	return v.Verify(ctx, strings.TrimSpace(strings.TrimPrefix(header, prefix)))
}
