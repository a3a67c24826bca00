package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenVerifier_ValidToken(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	signed := signToken(t, "test-secret", Claims{
		UserID:    42,
		TokenType: TokenTypeStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := verifier.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, TokenTypeStudent, claims.TokenType)
}

func TestTokenVerifier_WrongSecret(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	signed := signToken(t, "other-secret", Claims{
		UserID:    42,
		TokenType: TokenTypeStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := verifier.Verify(signed)
	assert.Error(t, err)
}

func TestTokenVerifier_ExpiredToken(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	signed := signToken(t, "test-secret", Claims{
		UserID:    42,
		TokenType: TokenTypeTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := verifier.Verify(signed)
	assert.Error(t, err)
}

func TestTokenVerifier_Garbage(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	_, err := verifier.Verify("not-a-token")
	assert.Error(t, err)
}
