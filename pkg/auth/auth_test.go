package auth

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenKey(t *testing.T) {
	key, err := NewTokenKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = hex.DecodeString(key)
	assert.NoError(t, err)

	other, err := NewTokenKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewSessionTokenManager("test-secret", time.Hour)

	userID := uuid.New()
	roomID := uuid.New()

	token, err := m.GenerateToken(userID, "alice", roomID)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, roomID, claims.RoomID)
	assert.Equal(t, "startuphub", claims.Issuer)
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	m := NewSessionTokenManager("secret-a", time.Hour)
	token, err := m.GenerateToken(uuid.New(), "alice", uuid.New())
	require.NoError(t, err)

	other := NewSessionTokenManager("secret-b", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	m := NewSessionTokenManager("test-secret", -time.Minute)
	token, err := m.GenerateToken(uuid.New(), "alice", uuid.New())
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}
