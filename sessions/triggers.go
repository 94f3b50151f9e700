package sessions

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// WatchForeground runs a proactive refresh check for every event, typically the host's
// "became active" signal, until ctx is done or events is closed.
func (m *Manager) WatchForeground(ctx context.Context, events <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			m.checkExpiry(ctx, "foreground")
		}
	}
}

// WatchInterval runs the same check on a ticker, for hosts without a lifecycle signal.
// A non-positive interval returns immediately.
func (m *Manager) WatchInterval(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkExpiry(ctx, "interval")
		}
	}
}

func (m *Manager) checkExpiry(ctx context.Context, source string) {
	if !m.Current().LoggedIn() {
		return
	}
	if err := m.ProactiveRefreshIfNeeded(ctx); err != nil {
		log.Warn().Err(err).Str("source", source).Msg("Proactive refresh failed")
	}
}
