//go:build integration

package redisrepo_test

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jrsteele09/go-session-client/token"
	"github.com/jrsteele09/go-session-client/token/redisrepo"
)

type RedisTokenRepoSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	repo      *redisrepo.RedisTokenRepo
}

func TestRedisTokenRepoSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisTokenRepoSuite))
}

func (s *RedisTokenRepoSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	addr, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	opts, err := redis.ParseURL(addr)
	s.Require().NoError(err)

	s.client = redis.NewClient(opts)
	s.Require().NoError(s.client.Ping(ctx).Err())
	s.repo = redisrepo.NewWithClient(s.client, "test")
}

func (s *RedisTokenRepoSuite) TearDownSuite() {
	ctx := context.Background()
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(ctx)
	}
}

func (s *RedisTokenRepoSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisTokenRepoSuite) TestMissingKey() {
	_, err := s.repo.Get(context.Background(), token.KeyAccessToken)
	s.Require().ErrorIs(err, token.ErrNotFound)
}

func (s *RedisTokenRepoSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(token.SetAll(ctx, s.repo, map[string]string{
		token.KeyAccessToken:  "access",
		token.KeyRefreshToken: "refresh",
		token.KeyUser:         `{"userId":3}`,
	}))

	fields, err := s.client.HGetAll(ctx, "test:session").Result()
	s.Require().NoError(err)
	s.Len(fields, 3)

	v, err := s.repo.Get(ctx, token.KeyRefreshToken)
	s.Require().NoError(err)
	s.Equal("refresh", v)

	s.Require().NoError(s.repo.Set(ctx, token.KeyAccessToken, "access-2"))
	v, err = s.repo.Get(ctx, token.KeyAccessToken)
	s.Require().NoError(err)
	s.Equal("access-2", v)
}

func (s *RedisTokenRepoSuite) TestRemoveAll() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Set(ctx, token.KeyAccessToken, "access"))
	s.Require().NoError(s.repo.RemoveAll(ctx, token.SessionKeys...))
	s.Require().NoError(s.repo.RemoveAll(ctx, token.SessionKeys...))

	exists, err := s.client.Exists(ctx, "test:session").Result()
	s.Require().NoError(err)
	s.Zero(exists)
}
