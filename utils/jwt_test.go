package utils

import (
	"testing"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, models.RoleSeller, "secret", time.Hour)
	require.NoError(t, err)

	userID, role, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, models.RoleSeller, role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(42, models.RoleUser, "secret", time.Hour)
	require.NoError(t, err)

	_, _, err = ParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken(42, models.RoleUser, "secret", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	_, _, err := ParseToken("not.a.token", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPasswordHash("password123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
