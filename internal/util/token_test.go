package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprint-lab/scrumdesk/dao/model"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 1, 24)

	msg := &JWTMessage{
		UserID: 42,
		Name:   "alice",
		Email:  "alice@example.com",
		Role:   model.RoleAdmin,
	}
	access, refresh, err := tm.CreateTokens(msg)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	got, err := tm.CheckToken(access)
	require.NoError(t, err)
	assert.Equal(t, *msg, got)
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 1, 24)
	access, _, err := tm.CreateTokens(&JWTMessage{UserID: 1, Role: model.RoleMember})
	require.NoError(t, err)

	other := NewTokenManager("another-secret", 1, 24)
	_, err = other.CheckToken(access)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	// A negative TTL produces an already-expired token.
	tm := NewTokenManager("test-secret", -1, -1)
	access, _, err := tm.CreateTokens(&JWTMessage{UserID: 1, Role: model.RoleMember})
	require.NoError(t, err)

	_, err = tm.CheckToken(access)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 1, 24)
	_, err := tm.CheckToken("not-a-jwt")
	assert.Error(t, err)
}
