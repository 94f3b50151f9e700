package config

import "time"

const (
	refreshThresholdVar    = "REFRESH_THRESHOLD"
	refreshTimeoutVar      = "REFRESH_TIMEOUT"
	requestTimeoutVar      = "REQUEST_TIMEOUT"
	refreshPollIntervalVar = "REFRESH_POLL_INTERVAL"

	DefaultRefreshThreshold = 2 * time.Minute
	DefaultRefreshTimeout   = 10 * time.Second
	DefaultRequestTimeout   = 30 * time.Second
)

type SessionConfig interface {
	GetRefreshThreshold() time.Duration
	GetRefreshTimeout() time.Duration
	GetRequestTimeout() time.Duration
	GetRefreshPollInterval() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetRefreshThreshold is how close to expiry an access token may get before a proactive refresh
func (Session) GetRefreshThreshold() time.Duration {
	return GetDuration(refreshThresholdVar, DefaultRefreshThreshold)
}

// GetRefreshTimeout bounds the /auth/refresh and other auth calls
func (Session) GetRefreshTimeout() time.Duration {
	return GetDuration(refreshTimeoutVar, DefaultRefreshTimeout)
}

func (Session) GetRequestTimeout() time.Duration {
	return GetDuration(requestTimeoutVar, DefaultRequestTimeout)
}

// GetRefreshPollInterval enables a periodic proactive check when non-zero.
// Used where the host has no foreground/active lifecycle signal.
func (Session) GetRefreshPollInterval() time.Duration {
	return GetDuration(refreshPollIntervalVar, 0)
}
