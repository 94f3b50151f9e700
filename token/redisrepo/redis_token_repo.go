// Package redisrepo keeps the session in a Redis hash so several processes on one host can share it.
package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/token"
)

var (
	_ token.Store       = (*RedisTokenRepo)(nil)
	_ token.MultiSetter = (*RedisTokenRepo)(nil)
)

// RedisTokenRepo stores session keys as fields of the hash <prefix>:session
type RedisTokenRepo struct {
	client *redis.Client
	key    string
}

// New connects using REDIS_URL and checks the connection
func New(ctx context.Context, cfg config.StorageConfig) (*RedisTokenRepo, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewWithClient(client, cfg.GetRedisKeyPrefix()), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, prefix string) *RedisTokenRepo {
	return &RedisTokenRepo{
		client: client,
		key:    prefix + ":session",
	}
}

func (r *RedisTokenRepo) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", token.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis hget %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisTokenRepo) Set(ctx context.Context, key, value string) error {
	if err := r.client.HSet(ctx, r.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
	return nil
}

// SetAll writes every field in a single HSET
func (r *RedisTokenRepo) SetAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}
	if err := r.client.HSet(ctx, r.key, fields).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (r *RedisTokenRepo) RemoveAll(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, r.key, keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

// Health checks if the Redis connection is healthy
func (r *RedisTokenRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisTokenRepo) Close() error {
	return r.client.Close()
}
