package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestHMACService_RoundTrip(t *testing.T) {
	s := NewHMACService("secret", time.Minute)
	id := uuid.New()

	tok, err := s.GenerateAccessToken(id, "ops@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	c, err := s.ValidateAccessToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.UserID != id || c.Email != "ops@example.com" || c.TokenType != TokenTypeAccess {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestHMACService_Rejects(t *testing.T) {
	s := NewHMACService("secret", time.Minute)
	id := uuid.New()

	expired := NewHMACService("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.GenerateAccessToken(id, "")

	other := NewHMACService("other", time.Minute)
	foreign, _ := other.GenerateAccessToken(id, "")

	refreshClaims := Claims{
		UserID:    id,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	refresh, _ := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, refreshClaims).SignedString([]byte("secret"))

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrTokenInvalid},
		{"expired", old, ErrTokenExpired},
		{"wrong secret", foreign, ErrTokenInvalid},
		{"refresh token", refresh, ErrTokenInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.ValidateAccessToken(tc.token)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestHMACService_GenerateRequiresConfig(t *testing.T) {
	if _, err := NewHMACService("", time.Minute).GenerateAccessToken(uuid.New(), ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without secret, got %v", err)
	}
	if _, err := NewHMACService("s", time.Minute).GenerateAccessToken(uuid.Nil, ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without user, got %v", err)
	}
}
