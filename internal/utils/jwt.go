package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Random token ids
)

// ErrMalformedToken is returned for any token that fails signature or claim checks
var ErrMalformedToken = errors.New("malformed token")

// GenerateToken mints a signed token for an account.
// It carries no expiry: the stored binding is what grants access, and it is never rotated.
func GenerateToken(accountID uint, secret string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatUint(uint64(accountID), 10), // Account the token is bound to
		ID:       uuid.NewString(),                          // Makes every minted token unique
		IssuedAt: jwt.NewNumericDate(time.Now()),            // Issued at current time
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseToken checks the signature and returns the account id in the subject
func ParseToken(tokenStr, secret string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, ErrMalformedToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrMalformedToken
	}
	return uint(id), nil
}
