package token

//go:generate mockgen -source=repo.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"

	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
)

// Keys under which the session is persisted
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// SessionKeys are removed together on logout
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// ErrNotFound is returned by Get for an absent key
var ErrNotFound = clienterrors.ErrNotFound

// Store is durable key-value persistence for the session. Implementations must be safe for
// concurrent use. Get returns ErrNotFound when the key is absent; RemoveAll ignores absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	RemoveAll(ctx context.Context, keys ...string) error
}

// MultiSetter is implemented by stores that can write several keys in one operation.
// Callers fall back to sequential Set calls when a store does not implement it.
type MultiSetter interface {
	SetAll(ctx context.Context, values map[string]string) error
}

// SetAll writes values through MultiSetter when available
func SetAll(ctx context.Context, s Store, values map[string]string) error {
	if ms, ok := s.(MultiSetter); ok {
		return ms.SetAll(ctx, values)
	}
	for _, k := range sortedKeys(values) {
		if err := s.Set(ctx, k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(values map[string]string) []string {
	// fixed order so a partial failure is predictable: tokens first, profile last
	keys := make([]string, 0, len(values))
	for _, k := range SessionKeys {
		if _, ok := values[k]; ok {
			keys = append(keys, k)
		}
	}
	for k := range values {
		if k != KeyAccessToken && k != KeyRefreshToken && k != KeyUser {
			keys = append(keys, k)
		}
	}
	return keys
}
