package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(accessTTL time.Duration) *Manager {
	return NewManager(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     accessTTL,
	})
}

func TestManager_RoundTrip(t *testing.T) {
	m := newTestManager(0)
	sub := Subject{ID: uuid.New(), Email: "kid@example.com", DisplayName: "Kid"}

	token, err := m.GenerateAccessToken(sub)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, claims.UserID)
	assert.Equal(t, "kid@example.com", claims.Email)
	assert.Equal(t, "mymath-exams", claims.Issuer)
	assert.Equal(t, time.Hour, m.AccessTTL())
}

func TestManager_SecretsAreNotInterchangeable(t *testing.T) {
	m := newTestManager(0)
	refresh, err := m.GenerateRefreshToken(Subject{ID: uuid.New()})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateRefreshToken(refresh)
	assert.NoError(t, err)
}

func TestManager_Expired(t *testing.T) {
	m := newTestManager(-time.Minute)
	token, err := m.GenerateAccessToken(Subject{ID: uuid.New()})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
