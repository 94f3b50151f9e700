package config

import "strings"

type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
	StoreRedis  StoreKind = "redis"
)

type StorageConfig interface {
	GetTokenStore() StoreKind
	GetTokenFile() string
	GetTokenFileSecret() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetTokenStore() StoreKind {
	switch kind := StoreKind(strings.ToLower(GetEnv("TOKEN_STORE", string(StoreFile)))); kind {
	case StoreMemory, StoreFile, StoreRedis:
		return kind
	default:
		return StoreFile
	}
}

func (Storage) GetTokenFile() string {
	return GetEnv("TOKEN_FILE", ".session-tokens.json")
}

// GetTokenFileSecret seals the token file at rest when set
func (Storage) GetTokenFileSecret() string {
	return GetEnv("TOKEN_FILE_SECRET", "")
}

func (Storage) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (Storage) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "session-client")
}
