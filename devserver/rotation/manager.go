package rotation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jrsteele09/go-session-client/internal/config"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager issues single-use refresh tokens. Every successful Rotate consumes the presented token
// and issues a new one, so replaying an old refresh token fails.
type Manager struct {
	repo   Repo
	config config.DevServerConfig
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, cfg config.DevServerConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Create generates a new refresh token for the user, replacing any existing one
func (m *Manager) Create(userID int64) (string, error) {
	if err := m.repo.DeleteByUserID(userID); err != nil && !clienterrors.Is(err, clienterrors.ErrNotFound) {
		return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
	}

	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Rotate consumes refreshToken and returns its owner and a replacement token
func (m *Manager) Rotate(refreshToken string) (int64, string, error) {
	rt, err := m.repo.Get(refreshToken)
	if err != nil {
		return 0, "", clienterrors.ErrInvalidRefreshToken
	}
	if err := m.repo.Delete(refreshToken); err != nil {
		// lost a race with another rotation of the same token
		return 0, "", clienterrors.ErrInvalidRefreshToken
	}
	if m.IsExpired(rt) {
		return 0, "", clienterrors.Wrapf(clienterrors.ErrInvalidRefreshToken, "expired")
	}

	next, err := m.Create(rt.UserID)
	if err != nil {
		return 0, "", err
	}
	return rt.UserID, next, nil
}

// Revoke deletes refreshToken. Unknown tokens are ignored.
func (m *Manager) Revoke(refreshToken string) {
	_ = m.repo.Delete(refreshToken)
}

// RevokeUser deletes the user's live refresh token, if any
func (m *Manager) RevokeUser(userID int64) {
	_ = m.repo.DeleteByUserID(userID)
}

// IsExpired checks if a refresh token is older than the configured lifetime
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.config.GetRefreshTokenExpiry()
}
