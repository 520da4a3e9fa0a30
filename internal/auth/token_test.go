package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("not-our-key"))
	require.NoError(t, err)

	got, err := BackendTokenExpiry(signed)

	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestBackendTokenExpiry_NoExp(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "admin-1"}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	got, err := BackendTokenExpiry(signed)

	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestBackendTokenExpiry_Opaque(t *testing.T) {
	_, err := BackendTokenExpiry("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformedToken)
}
