package filerepo_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/token"
	"github.com/jrsteele09/go-session-client/token/filerepo"
	"github.com/stretchr/testify/require"
)

func TestFileTokenRepo(t *testing.T) {
	ctx := context.Background()

	for _, secret := range []string{"", "correct horse battery staple"} {
		name := "plain"
		if secret != "" {
			name = "sealed"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session", "tokens.json")
			repo := filerepo.New(path, filerepo.WithSecret(secret))

			_, err := repo.Get(ctx, token.KeyAccessToken)
			require.ErrorIs(t, err, token.ErrNotFound)

			require.NoError(t, token.SetAll(ctx, repo, map[string]string{
				token.KeyAccessToken:  "access-abc",
				token.KeyRefreshToken: "refresh-xyz",
				token.KeyUser:         `{"userId":1,"email":"a@b.com"}`,
			}))

			info, err := os.Stat(path)
			require.NoError(t, err)
			require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, secret == "", strings.Contains(string(raw), "refresh-xyz"))

			reopened := filerepo.New(path, filerepo.WithSecret(secret))
			v, err := reopened.Get(ctx, token.KeyRefreshToken)
			require.NoError(t, err)
			require.Equal(t, "refresh-xyz", v)

			require.NoError(t, reopened.Set(ctx, token.KeyAccessToken, "access-def"))
			v, err = repo.Get(ctx, token.KeyAccessToken)
			require.NoError(t, err)
			require.Equal(t, "access-def", v)

			require.NoError(t, repo.RemoveAll(ctx, token.SessionKeys...))
			_, err = os.Stat(path)
			require.True(t, os.IsNotExist(err))
			require.NoError(t, repo.RemoveAll(ctx, token.SessionKeys...))
		})
	}
}

func TestFileTokenRepoWrongSecret(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.json")

	require.NoError(t, filerepo.New(path, filerepo.WithSecret("one")).Set(ctx, token.KeyAccessToken, "tok"))

	_, err := filerepo.New(path, filerepo.WithSecret("two")).Get(ctx, token.KeyAccessToken)
	require.ErrorIs(t, err, filerepo.ErrSealed)
	require.ErrorIs(t, err, clienterrors.ErrStoreUnavailable)
}

func TestFileTokenRepoCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := filerepo.New(path).Get(context.Background(), token.KeyAccessToken)
	require.Error(t, err)
	require.NotErrorIs(t, err, token.ErrNotFound)
}
