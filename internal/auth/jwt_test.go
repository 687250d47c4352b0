package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	userID := uuid.New()

	token, err := GenerateToken(userID, secret, time.Hour)
	require.NoError(t, err)

	got, err := UserIDFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	got, err = UserIDFromToken("Bearer "+token, secret)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenWrongSecret(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = UserIDFromToken(token, []byte("wrong"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, []byte("secret"), -time.Minute)
	require.NoError(t, err)

	_, err = UserIDFromToken(token, []byte("secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
