package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		Role: "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   "user:3",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("api-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func TestIsExpired(t *testing.T) {
	now := time.Now()

	if IsExpired(signToken(t, now.Add(time.Hour)), now) {
		t.Error("Expected future token to be valid")
	}
	if !IsExpired(signToken(t, now.Add(-time.Minute)), now) {
		t.Error("Expected past token to be expired")
	}
	if IsExpired("12|plain-sanctum-token", now) {
		t.Error("Expected opaque token to never expire client-side")
	}
}

func TestInspect_ReadsClaimsWithoutKey(t *testing.T) {
	claims, err := Inspect(signToken(t, time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if claims.Role != "customer" || claims.Subject != "user:3" {
		t.Errorf("Expected decoded claims, got %+v", claims)
	}
}
