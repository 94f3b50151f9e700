package auth_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-session-client/auth"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := auth.NewMemoryDenylist()

	d.Revoke("a", now.Add(time.Minute))
	d.Revoke("b", now.Add(time.Hour))
	require.True(t, d.IsRevoked("a", now))
	require.False(t, d.IsRevoked("unknown", now))

	t.Run("expired entries no longer count", func(t *testing.T) {
		require.False(t, d.IsRevoked("a", now.Add(time.Minute)))
	})

	t.Run("a later expiry is kept", func(t *testing.T) {
		d.Revoke("b", now.Add(time.Minute))
		require.True(t, d.IsRevoked("b", now.Add(30*time.Minute)))
	})

	t.Run("prune removes expired entries", func(t *testing.T) {
		require.Equal(t, 1, d.Prune(now.Add(2*time.Minute)))
		require.Zero(t, d.Prune(now.Add(2*time.Minute)))
		require.True(t, d.IsRevoked("b", now.Add(2*time.Minute)))
	})
}
