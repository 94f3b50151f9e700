package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	appNameVar  = "APP_NAME"
	envVar      = "ENV"
	logLevelVar = "LOG_LEVEL"
	baseURLVar  = "API_BASE_URL"
)

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Session Client")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return strings.ToUpper(env)
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetBaseURL returns the API root every request path is resolved against (e.g. "https://api.example.com/api/v1")
func (EnvVars) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, "http://localhost:18080/api/v1"), "/")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration reads a Go duration ("90s", "2m") from envVar, falling back to defaultValue when unset or invalid.
func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		log.Warn().Str("var", envVar).Str("value", value).Dur("default", defaultValue).Msg("Invalid duration, using default")
		return defaultValue
	}
	return d
}

// GetInt reads an integer from envVar, falling back to defaultValue when unset or invalid.
func GetInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("var", envVar).Str("value", value).Int("default", defaultValue).Msg("Invalid integer, using default")
		return defaultValue
	}
	return i
}
