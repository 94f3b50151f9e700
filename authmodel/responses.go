package authmodel

import (
	"strings"

	"github.com/jrsteele09/go-session-client/users"
)

// TokenPair is the body returned by POST /auth/refresh. The refresh token is rotated on every call.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether both tokens are present
func (p *TokenPair) Valid() bool {
	return p != nil && strings.TrimSpace(p.AccessToken) != "" && strings.TrimSpace(p.RefreshToken) != ""
}

// AuthResponse is returned by login, signup and social login
type AuthResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresIn    int        `json:"expiresIn"` // access token lifetime in seconds, a hint only
	User         users.User `json:"user"`
	IsNewUser    bool       `json:"isNewUser"`
}

func (r *AuthResponse) Tokens() TokenPair {
	return TokenPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// StatusResponse is the generic {success, message} body
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MessageResponse is returned by logout
type MessageResponse struct {
	Message string `json:"message"`
}

// Envelope wraps payloads of the user endpoints
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is what the API sends with a non-2xx status
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Profile is the body of GET /user/profile
type Profile struct {
	ID           int64  `json:"userId"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage,omitempty"`
	Bio          string `json:"bio,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}
