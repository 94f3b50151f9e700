package sessions

import (
	"time"

	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/internal/metrics"
	"github.com/jrsteele09/go-session-client/token/refresh"
)

// Clock supplies the current time
type Clock func() time.Time

// ExpiryDecoder reads the expiry of an access token. ok is false when it cannot be determined.
type ExpiryDecoder interface {
	ExpiresAt(rawToken string) (expiresAt time.Time, ok bool)
}

type Option func(*Manager)

func WithClock(clock Clock) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithThreshold sets how close to expiry a token may get before a proactive refresh.
// Non-positive values keep the default.
func WithThreshold(threshold time.Duration) Option {
	return func(m *Manager) {
		if threshold > 0 {
			m.threshold = threshold
		}
	}
}

func WithDecoder(decoder ExpiryDecoder) Option {
	return func(m *Manager) {
		if decoder != nil {
			m.decoder = decoder
		}
	}
}

func WithMetrics(mtr *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mtr
	}
}

// WithRevoker sets the remote call used by Logout. Defaults to the exchanger when it implements
// refresh.Revoker.
func WithRevoker(revoker refresh.Revoker) Option {
	return func(m *Manager) {
		m.revoker = revoker
	}
}

func WithGate(gate *refresh.Gate) Option {
	return func(m *Manager) {
		if gate != nil {
			m.gate = gate
		}
	}
}

// WithConfig applies the session settings from configuration
func WithConfig(cfg config.SessionConfig) Option {
	return WithThreshold(cfg.GetRefreshThreshold())
}
