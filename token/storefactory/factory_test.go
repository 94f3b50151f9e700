package storefactory_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/token/filerepo"
	tokenfakerepo "github.com/jrsteele09/go-session-client/token/repofake"
	"github.com/jrsteele09/go-session-client/token/storefactory"
	"github.com/stretchr/testify/require"
)

type storageConfig struct {
	kind config.StoreKind
	file string
}

func (c storageConfig) GetTokenStore() config.StoreKind { return c.kind }
func (c storageConfig) GetTokenFile() string            { return c.file }
func (c storageConfig) GetTokenFileSecret() string      { return "" }
func (c storageConfig) GetRedisURL() string             { return "redis://127.0.0.1:1/0" }
func (c storageConfig) GetRedisKeyPrefix() string       { return "test" }

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := storefactory.New(ctx, storageConfig{kind: config.StoreMemory})
		require.NoError(t, err)
		require.IsType(t, &tokenfakerepo.FakeTokenRepo{}, store)
		require.NoError(t, closeFn())
	})

	t.Run("file", func(t *testing.T) {
		store, _, err := storefactory.New(ctx, storageConfig{kind: config.StoreFile, file: filepath.Join(t.TempDir(), "t.json")})
		require.NoError(t, err)
		require.IsType(t, &filerepo.FileTokenRepo{}, store)
	})

	t.Run("unknown", func(t *testing.T) {
		_, closeFn, err := storefactory.New(ctx, storageConfig{kind: "floppy"})
		require.Error(t, err)
		require.NotNil(t, closeFn)
	})
}
