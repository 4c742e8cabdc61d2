package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestManager_AccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.NewAccessToken("alice@x.com")
	require.NoError(t, err)

	claims, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", claims.Email)

	ttl := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, (15 * time.Minute).Seconds(), ttl.Seconds(), 5)
}

func TestManager_RefreshTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.NewRefreshToken("alice@x.com")
	require.NoError(t, err)

	claims, err := m.ParseRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", claims.Email)

	ttl := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), ttl.Seconds(), 5)
}

func TestManager_SecretsAreNotInterchangeable(t *testing.T) {
	m := newTestManager()

	access, err := m.NewAccessToken("alice@x.com")
	require.NoError(t, err)

	_, err = m.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	refresh, err := m.NewRefreshToken("alice@x.com")
	require.NoError(t, err)

	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestManager_ExpiredIsDistinctFromInvalid(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	expired, err := m.NewRefreshToken("alice@x.com")
	require.NoError(t, err)

	_, err = m.ParseRefresh(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = m.ParseRefresh("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
