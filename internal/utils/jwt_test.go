package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "alice", "alice@example.com", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	claims, err := VerifyAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Errorf("claims = %+v, want user 42/alice/alice@example.com", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret-a", 1, "u", "u@example.com", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	_, err = VerifyAccessToken("secret-b", tok.Token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("wrong secret: err = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	// Sign an already-expired token directly; NewAccessToken does not
	// allow negative TTLs at the call sites.
	now := time.Now().UTC()
	claims := IdentityClaims{
		UserID:   1,
		Username: "u",
		Email:    "u@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = VerifyAccessToken("secret", signed)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token: err = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := VerifyAccessToken("secret", "not.a.jwt")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage token: err = %v, want ErrTokenInvalid", err)
	}
}

func TestHashRefreshRawStable(t *testing.T) {
	a := HashRefreshRaw("raw-token")
	b := HashRefreshRaw("raw-token")
	if a != b {
		t.Errorf("hash not deterministic: %q vs %q", a, b)
	}
	if a == HashRefreshRaw("other-token") {
		t.Error("distinct tokens hashed equal")
	}
}
