// Package sessions owns the authenticated session of the application: loading it at start,
// installing it after login, renewing the access token and tearing the session down.
package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/internal/logging"
	"github.com/jrsteele09/go-session-client/internal/metrics"
	"github.com/jrsteele09/go-session-client/token"
	"github.com/jrsteele09/go-session-client/token/jwt"
	"github.com/jrsteele09/go-session-client/token/refresh"
	"github.com/jrsteele09/go-session-client/users"
)

var (
	ErrNotLoggedIn     = clienterrors.ErrNotLoggedIn
	ErrRefreshFailed   = clienterrors.ErrRefreshFailed
	ErrSessionReplaced = clienterrors.ErrSessionReplaced
	ErrInvalidAuthData = clienterrors.ErrInvalidAuthData
)

var _ oauth2.TokenSource = (*Manager)(nil)

// Manager is the single writer of the Session. Mutations (SetAuthData, ClearAuth and applying a
// refresh) are serialized and always write the Store before the in-memory state changes, so a
// reader never sees LoggedIn in memory while the Store lacks the tokens.
type Manager struct {
	store     token.Store
	exchanger refresh.Exchanger
	revoker   refresh.Revoker
	gate      *refresh.Gate
	decoder   ExpiryDecoder
	clock     Clock
	threshold time.Duration
	metrics   *metrics.Metrics

	mu         sync.Mutex // serializes mutations
	stateMu    sync.RWMutex
	session    Session
	generation uint64 // bumped on every mutation

	obsMu     sync.Mutex
	observers []observer
	nextObsID int
	pending   []Session
	draining  bool
}

type observer struct {
	id int
	fn func(Session)
}

// NewManager creates a Manager in the Loading state. Call Load before use.
func NewManager(store token.Store, exchanger refresh.Exchanger, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		exchanger: exchanger,
		gate:      refresh.NewGate(),
		decoder:   jwt.NewCodec(),
		clock:     time.Now,
		threshold: config.DefaultRefreshThreshold,
		session:   Session{Status: Loading},
	}
	if r, ok := exchanger.(refresh.Revoker); ok {
		m.revoker = r
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load restores the session from the Store. A complete, readable session becomes LoggedIn and is
// then checked for proactive renewal; anything else becomes LoggedOut. Load never fails.
func (m *Manager) Load(ctx context.Context) Session {
	m.mu.Lock()
	s, err := m.readStore(ctx)
	if err != nil {
		log.Info().Err(err).Msg("No stored session")
		s = loggedOut()
	}
	m.applyLocked(s)
	m.mu.Unlock()
	m.flush()

	if s.LoggedIn() {
		if err := m.ProactiveRefreshIfNeeded(ctx); err != nil {
			log.Warn().Err(err).Msg("Refresh after load failed")
		}
	}
	return m.Current()
}

func (m *Manager) readStore(ctx context.Context) (Session, error) {
	access, err := m.store.Get(ctx, token.KeyAccessToken)
	if err != nil {
		return Session{}, fmt.Errorf("[Manager Load] read access token: %w", err)
	}
	refreshToken, err := m.store.Get(ctx, token.KeyRefreshToken)
	if err != nil {
		return Session{}, fmt.Errorf("[Manager Load] read refresh token: %w", err)
	}
	rawUser, err := m.store.Get(ctx, token.KeyUser)
	if err != nil {
		return Session{}, fmt.Errorf("[Manager Load] read user: %w", err)
	}
	if access == "" || refreshToken == "" {
		return Session{}, fmt.Errorf("[Manager Load] empty token: %w", ErrInvalidAuthData)
	}
	user, err := users.Unmarshal(rawUser)
	if err != nil {
		return Session{}, fmt.Errorf("[Manager Load] decode user: %w", err)
	}
	return Session{
		Status:       LoggedIn,
		AccessToken:  access,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// SetAuthData persists a new session and then installs it in memory. On a Store failure the
// in-memory session is left as it was.
func (m *Manager) SetAuthData(ctx context.Context, accessToken, refreshToken string, user users.User) error {
	if accessToken == "" || refreshToken == "" {
		return fmt.Errorf("[Manager SetAuthData] tokens are required: %w", ErrInvalidAuthData)
	}
	rawUser, err := user.Marshal()
	if err != nil {
		return fmt.Errorf("[Manager SetAuthData] encode user: %w", err)
	}

	m.mu.Lock()
	err = token.SetAll(ctx, m.store, map[string]string{
		token.KeyAccessToken:  accessToken,
		token.KeyRefreshToken: refreshToken,
		token.KeyUser:         rawUser,
	})
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("[Manager SetAuthData] persist session: %w", err)
	}
	m.applyLocked(Session{
		Status:       LoggedIn,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	})
	m.mu.Unlock()
	m.flush()

	log.Info().Int64("user_id", user.ID).Msg("Session established")
	return nil
}

// ClearAuth removes the session from the Store and memory. Calling it while logged out is a no-op.
// A Store failure is returned but the in-memory session is cleared regardless.
func (m *Manager) ClearAuth(ctx context.Context) error {
	m.mu.Lock()
	err := m.clearLocked(ctx)
	m.mu.Unlock()
	m.flush()
	return err
}

func (m *Manager) clearLocked(ctx context.Context) error {
	err := m.store.RemoveAll(ctx, token.SessionKeys...)
	if err != nil {
		log.Err(err).Msg("Failed to remove stored session")
		err = fmt.Errorf("[Manager ClearAuth] remove stored session: %w", err)
	}
	if m.Current().Status != LoggedOut {
		m.applyLocked(loggedOut())
		log.Info().Msg("Session cleared")
	}
	return err
}

// ProactiveRefreshIfNeeded renews the access token when it expires within the threshold.
// Nothing happens when logged out or when the expiry cannot be decoded.
func (m *Manager) ProactiveRefreshIfNeeded(ctx context.Context) error {
	s := m.Current()
	if !s.LoggedIn() {
		return nil
	}

	expiresAt, ok := m.decoder.ExpiresAt(s.AccessToken)
	if !ok {
		log.Debug().Msg("Access token expiry unknown, skipping refresh")
		return nil
	}
	remaining := expiresAt.Sub(m.clock())
	if remaining >= m.threshold {
		return nil
	}

	log.Debug().Dur("remaining", remaining).Msg("Access token close to expiry")
	_, err := m.refresh(ctx, metrics.TriggerProactive, s.AccessToken)
	return err
}

// ReactiveRefresh is called after a request carrying failedToken was rejected with 401. It returns
// the access token to retry with. If the session already holds a different token the request was
// sent with a stale one and the current token is returned without a network call.
func (m *Manager) ReactiveRefresh(ctx context.Context, failedToken string) (string, error) {
	s := m.Current()
	if !s.LoggedIn() {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNotLoggedIn)
	}
	if s.AccessToken != failedToken {
		return s.AccessToken, nil
	}
	return m.refresh(ctx, metrics.TriggerReactive, failedToken)
}

// refresh exchanges the refresh token through the gate. staleToken is the access token the caller
// considers expired; a flight that starts after someone else already replaced it does no work.
// Observers are notified after the flight has ended, so one that refreshes again starts a new flight.
func (m *Manager) refresh(ctx context.Context, trigger, staleToken string) (string, error) {
	tok, err := m.gate.Do(ctx, func(ctx context.Context) (string, error) {
		defer m.flushIfAbandoned()

		m.mu.Lock()
		s := m.Current()
		gen := m.generation
		m.mu.Unlock()

		if !s.LoggedIn() {
			return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNotLoggedIn)
		}
		if s.AccessToken != staleToken {
			return s.AccessToken, nil
		}

		pair, err := m.exchanger.Exchange(ctx, s.RefreshToken)
		m.metrics.ObserveRefresh(trigger, err)
		if err != nil {
			log.Warn().Err(err).Str("trigger", trigger).Msg("Token refresh failed, clearing session")
			m.clearIfCurrent(ctx, gen)
			return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
		return m.applyRefresh(ctx, gen, pair.AccessToken, pair.RefreshToken)
	})
	m.flush()
	return tok, err
}

// flushIfAbandoned delivers from a fresh goroutine when no caller is left waiting on the flight
func (m *Manager) flushIfAbandoned() {
	if m.gate.Waiting() == 0 {
		go m.flush()
	}
}

// clearIfCurrent and applyRefresh run inside the gate's flight and leave delivery to refresh.
func (m *Manager) clearIfCurrent(ctx context.Context, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation == gen {
		_ = m.clearLocked(ctx)
	}
}

func (m *Manager) applyRefresh(ctx context.Context, gen uint64, accessToken, refreshToken string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		log.Info().Msg("Session changed during refresh, discarding result")
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrSessionReplaced)
	}

	err := token.SetAll(ctx, m.store, map[string]string{
		token.KeyAccessToken:  accessToken,
		token.KeyRefreshToken: refreshToken,
	})
	if err != nil {
		// the old refresh token is already consumed, so the new pair is kept in memory
		log.Err(err).Msg("Failed to persist refreshed tokens")
	}

	s := m.Current()
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	m.applyLocked(s)

	log.Debug().Str("token", logging.TokenFingerprint(accessToken)).Msg("Access token refreshed")
	return accessToken, nil
}

// Logout revokes the refresh token at the server, best effort, and clears the session
func (m *Manager) Logout(ctx context.Context) error {
	s := m.Current()
	if s.RefreshToken != "" && m.revoker != nil {
		if err := m.revoker.Revoke(ctx, s.RefreshToken); err != nil {
			log.Warn().Err(err).Msg("Remote logout failed")
		}
	}
	return m.ClearAuth(ctx)
}

// Current returns a snapshot of the session
func (m *Manager) Current() Session {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.session.clone()
}

// AccessToken returns the current access token, or "" when not logged in
func (m *Manager) AccessToken() string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.session.AccessToken
}

// Token implements oauth2.TokenSource. Expiry is zero when it cannot be decoded.
func (m *Manager) Token() (*oauth2.Token, error) {
	s := m.Current()
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	t := &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.RefreshToken,
	}
	if exp, ok := m.decoder.ExpiresAt(s.AccessToken); ok {
		t.Expiry = exp
	}
	return t, nil
}

// Subscribe registers fn to receive the session after every change, in the order changes happen.
// fn runs outside the Manager's locks and may call back into the Manager.
func (m *Manager) Subscribe(fn func(Session)) (unsubscribe func()) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.nextObsID++
	id := m.nextObsID
	m.observers = append(m.observers, observer{id: id, fn: fn})

	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// applyLocked installs s and queues it for observers. Callers hold m.mu and call flush after
// releasing it.
func (m *Manager) applyLocked(s Session) {
	m.stateMu.Lock()
	prev := m.session.Status
	m.session = s
	m.generation++
	m.stateMu.Unlock()

	if prev != s.Status {
		m.metrics.ObserveTransition(s.Status.String())
	}

	m.obsMu.Lock()
	m.pending = append(m.pending, s.clone())
	m.obsMu.Unlock()
}

// flush delivers queued sessions. Only one goroutine drains at a time so observers see changes in
// order; a nested call from inside an observer returns immediately and the outer drain delivers.
func (m *Manager) flush() {
	m.obsMu.Lock()
	if m.draining {
		m.obsMu.Unlock()
		return
	}
	m.draining = true
	for len(m.pending) > 0 {
		s := m.pending[0]
		m.pending = m.pending[1:]
		observers := append([]observer(nil), m.observers...)
		m.obsMu.Unlock()
		for _, o := range observers {
			o.fn(s.clone())
		}
		m.obsMu.Lock()
	}
	m.draining = false
	m.obsMu.Unlock()
}
