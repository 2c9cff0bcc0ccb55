// Package auth protects the extswitch admin API with HS256 bearer tokens.
// The daemon and its editing clients share one secret; there is no user
// database.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the minimum accepted secret length in bytes. Shorter HMAC
// secrets are brute-forceable offline.
const MinSecretLen = 32

// Claims carries the token identity.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// ValidateSecret rejects secrets shorter than MinSecretLen.
func ValidateSecret(secret []byte) error {
	if len(secret) < MinSecretLen {
		return fmt.Errorf("auth: secret must be at least %d bytes, got %d", MinSecretLen, len(secret))
	}
	return nil
}

// GenerateToken creates a signed token for subject with the given role and
// lifetime.
func GenerateToken(secret []byte, subject, role string, expiry time.Duration) (string, error) {
	if err := ValidateSecret(secret); err != nil {
		return "", err
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string. The signing method is
// pinned to HS256 to prevent algorithm confusion.
func ValidateToken(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v (only HS256 allowed)", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
