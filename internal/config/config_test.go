package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestSessionConfig(t *testing.T) {
	c := config.New()

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("REFRESH_THRESHOLD", "")
		t.Setenv("REFRESH_POLL_INTERVAL", "")
		require.Equal(t, 2*time.Minute, c.GetRefreshThreshold())
		require.Equal(t, 10*time.Second, c.GetRefreshTimeout())
		require.Equal(t, 30*time.Second, c.GetRequestTimeout())
		require.Zero(t, c.GetRefreshPollInterval())
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("REFRESH_THRESHOLD", "90s")
		require.Equal(t, 90*time.Second, c.GetRefreshThreshold())
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv("REFRESH_THRESHOLD", "soon")
		require.Equal(t, config.DefaultRefreshThreshold, c.GetRefreshThreshold())
		t.Setenv("REFRESH_THRESHOLD", "-5s")
		require.Equal(t, config.DefaultRefreshThreshold, c.GetRefreshThreshold())
	})
}

func TestEnvConfig(t *testing.T) {
	c := config.New()

	t.Run("base url trailing slash trimmed", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "https://api.example.com/api/v1/")
		require.Equal(t, "https://api.example.com/api/v1", c.GetBaseURL())
	})

	t.Run("env defaults to DEV", func(t *testing.T) {
		t.Setenv("ENV", "")
		require.Equal(t, "DEV", c.GetEnv())
		t.Setenv("ENV", "prod")
		require.Equal(t, "PROD", c.GetEnv())
	})
}

func TestStorageConfig(t *testing.T) {
	c := config.New()

	t.Setenv("TOKEN_STORE", "REDIS")
	require.Equal(t, config.StoreRedis, c.GetTokenStore())

	t.Setenv("TOKEN_STORE", "floppy")
	require.Equal(t, config.StoreFile, c.GetTokenStore())
}

func TestDevServerConfig(t *testing.T) {
	c := config.New()

	t.Setenv("PORT", "9000")
	require.Equal(t, ":9000", c.GetPort())

	t.Setenv("REFRESH_TOKEN_LENGTH", "abc")
	require.Equal(t, 32, c.GetRefreshTokenLength())
}
