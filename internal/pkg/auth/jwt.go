// internal/pkg/auth/jwt.go
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the claims the bakery API puts in its access tokens.
// The API signs tokens with its own key; the storefront only inspects them.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes a bearer token without verifying its signature.
// Verification is the API's job; the storefront only needs the expiry.
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// IsExpired reports whether a token carries an exp claim that is already past.
// Opaque (non-JWT) tokens and tokens without exp never expire client-side.
func IsExpired(tokenString string, now time.Time) bool {
	if strings.Count(tokenString, ".") != 2 {
		return false
	}
	claims, err := Inspect(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

