package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/internal/auth"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyValidToken(t *testing.T) {
	verifier := auth.NewJWTVerifier(testSecret)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"email": "user@example.com",
		"name":  "Test User",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity, err := verifier.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", identity.Email)
	assert.Equal(t, "Test User", identity.Name)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	verifier := auth.NewJWTVerifier(testSecret)
	raw := signToken(t, "another-secret", jwt.MapClaims{
		"email": "user@example.com",
	})

	_, err := verifier.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier := auth.NewJWTVerifier(testSecret)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"email": "user@example.com",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})

	_, err := verifier.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsMissingEmailClaim(t *testing.T) {
	verifier := auth.NewJWTVerifier(testSecret)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"name": "No Email",
	})

	_, err := verifier.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	verifier := auth.NewJWTVerifier(testSecret)

	_, err := verifier.Verify("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
