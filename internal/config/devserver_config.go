package config

import (
	"fmt"
	"time"
)

type DevServerConfig interface {
	GetPort() string
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
}

type DevServer struct{}

var _ DevServerConfig = DevServer{}

func (DevServer) GetPort() string {
	port := GetEnv("PORT", "18080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (DevServer) GetSigningSecret() string {
	return GetEnv("SIGNING_SECRET", "dev-signing-secret-change-me")
}

func (DevServer) GetAccessTokenExpiry() time.Duration {
	return GetDuration("ACCESS_TOKEN_EXPIRY", 5*time.Minute)
}

func (DevServer) GetRefreshTokenExpiry() time.Duration {
	return GetDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)
}

func (DevServer) GetRefreshTokenLength() int {
	return GetInt("REFRESH_TOKEN_LENGTH", 32) // 32 bytes = 256 bits
}
