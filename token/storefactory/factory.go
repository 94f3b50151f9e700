package storefactory

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/token"
	"github.com/jrsteele09/go-session-client/token/filerepo"
	"github.com/jrsteele09/go-session-client/token/redisrepo"
	tokenfakerepo "github.com/jrsteele09/go-session-client/token/repofake"
)

// New builds the token store selected by TOKEN_STORE. The returned close func releases any
// connection held by the store and is never nil.
func New(ctx context.Context, cfg config.StorageConfig) (token.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.GetTokenStore() {
	case config.StoreMemory:
		return tokenfakerepo.NewFakeTokenRepo(), noop, nil

	case config.StoreFile:
		return filerepo.New(cfg.GetTokenFile(), filerepo.WithSecret(cfg.GetTokenFileSecret())), noop, nil

	case config.StoreRedis:
		repo, err := redisrepo.New(ctx, cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open redis token store: %w", err)
		}
		return repo, repo.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported token store: %s", cfg.GetTokenStore())
	}
}
