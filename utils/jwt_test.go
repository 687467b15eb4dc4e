package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestTokenSignedWithEnvSecret(t *testing.T) {
	// Set before the first token operation: the key is resolved lazily,
	// so an environment loaded after package init must still win.
	t.Setenv("JWT_SECRET", "secret-from-env")

	token, err := GenerateToken(42, "customer")
	assert.NoError(t, err)

	// verify against the raw env secret, not through ParseToken
	parsed, err := jwt.ParseWithClaims(token, &CustomClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("secret-from-env"), nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)

	claims, err := ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "customer", claims.Role)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not-a-token")
	assert.Error(t, err)
}
