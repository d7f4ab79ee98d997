package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("unit-test-signing-key")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return signed
}

func TestTokenVerifier_Verify(t *testing.T) {
	v := NewTokenVerifier(VerifierConfig{Issuer: "assistkit"}, NewStaticKeyProvider(testKey))

	signed := signToken(t, jwt.MapClaims{
		"sub": "user-42",
		"iss": "assistkit",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	id, err := v.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.UserID != "user-42" {
		t.Errorf("UserID = %q, want user-42", id.UserID)
	}
	if id.ExpiresAt.IsZero() {
		t.Error("ExpiresAt is zero, want expiry from token")
	}
}

func TestTokenVerifier_Rejections(t *testing.T) {
	v := NewTokenVerifier(VerifierConfig{Issuer: "assistkit"}, NewStaticKeyProvider(testKey))
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty token", "", ErrMissingToken},
		{"garbage", "not.a.token", ErrTokenInvalid},
		{
			"expired",
			signToken(t, jwt.MapClaims{
				"sub": "user-42", "iss": "assistkit",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			ErrTokenExpired,
		},
		{
			"wrong issuer",
			signToken(t, jwt.MapClaims{"sub": "user-42", "iss": "other", "exp": future}),
			ErrTokenInvalid,
		},
		{
			"missing subject",
			signToken(t, jwt.MapClaims{"iss": "assistkit", "exp": future}),
			ErrTokenInvalid,
		},
		{
			"no expiry claim",
			signToken(t, jwt.MapClaims{"sub": "user-42", "iss": "assistkit"}),
			ErrTokenInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tt.token); !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenVerifier_VerifyHeader(t *testing.T) {
	v := NewTokenVerifier(VerifierConfig{}, NewStaticKeyProvider(testKey))
	signed := signToken(t, jwt.MapClaims{
		"sub": "user-7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	id, err := v.VerifyHeader(context.Background(), "Bearer "+signed)
	if err != nil {
		t.Fatalf("VerifyHeader() error = %v", err)
	}
	if id.UserID != "user-7" {
		t.Errorf("UserID = %q, want user-7", id.UserID)
	}

	if _, err := v.VerifyHeader(context.Background(), signed); !errors.Is(err, ErrMissingToken) {
		t.Errorf("VerifyHeader() without prefix error = %v, want ErrMissingToken", err)
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if got := UserIDFromContext(ctx); got != "" {
		t.Errorf("UserIDFromContext(empty) = %q, want \"\"", got)
	}

	ctx = WithIdentity(ctx, &Identity{UserID: "user-42"})
	if got := UserIDFromContext(ctx); got != "user-42" {
		t.Errorf("UserIDFromContext() = %q, want user-42", got)
	}
}

func TestIdentity_Expired(t *testing.T) {
	now := time.Now()
	id := &Identity{ExpiresAt: now.Add(-time.Minute)}
	if !id.Expired(now) {
		t.Error("Expired() = false for past expiry, want true")
	}
	if (&Identity{}).Expired(now) {
		t.Error("Expired() = true for zero expiry, want false")
	}
}
