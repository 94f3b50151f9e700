package rotation_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-session-client/devserver/rotation"
	refreshrepofake "github.com/jrsteele09/go-session-client/devserver/rotation/repofake"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/stretchr/testify/require"
)

type devServerConfig struct{}

func (devServerConfig) GetPort() string                      { return ":0" }
func (devServerConfig) GetSigningSecret() string             { return "secret" }
func (devServerConfig) GetAccessTokenExpiry() time.Duration  { return time.Minute }
func (devServerConfig) GetRefreshTokenExpiry() time.Duration { return time.Hour }
func (devServerConfig) GetRefreshTokenLength() int           { return 16 }

func TestRotate(t *testing.T) {
	m := rotation.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), devServerConfig{})

	first, err := m.Create(1)
	require.NoError(t, err)
	require.Len(t, first, 32)

	userID, second, err := m.Rotate(first)
	require.NoError(t, err)
	require.Equal(t, int64(1), userID)
	require.NotEqual(t, first, second)

	t.Run("consumed token is rejected", func(t *testing.T) {
		_, _, err := m.Rotate(first)
		require.ErrorIs(t, err, clienterrors.ErrInvalidRefreshToken)
	})

	t.Run("create replaces the live token", func(t *testing.T) {
		third, err := m.Create(1)
		require.NoError(t, err)
		_, _, err = m.Rotate(second)
		require.ErrorIs(t, err, clienterrors.ErrInvalidRefreshToken)
		m.Revoke(third)
		_, _, err = m.Rotate(third)
		require.ErrorIs(t, err, clienterrors.ErrInvalidRefreshToken)
	})
}

func TestRotateExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rotation.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { rotation.NowTimeFunc = time.Now })

	m := rotation.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), devServerConfig{})
	tok, err := m.Create(9)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, _, err = m.Rotate(tok)
	require.ErrorIs(t, err, clienterrors.ErrInvalidRefreshToken)
}
