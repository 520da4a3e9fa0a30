package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when the backend credential is not a JWT.
var ErrMalformedToken = errors.New("malformed backend token")

// BackendTokenExpiry reads the exp claim of a backend-issued JWT without
// verifying its signature. The console never holds the backend's signing
// key; it only uses exp to avoid keeping a session past its credential.
// A token without exp yields the zero time.
func BackendTokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
