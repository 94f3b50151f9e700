// Package authapi wraps the authentication and profile endpoints. Calls that create a session
// install it in the session manager; calls that end one clear it.
package authapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-client/authmodel"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/users"
)

// Endpoint paths relative to the API base URL
const (
	LoginPath            = "/auth/login"
	SignupPath           = "/auth/signup"
	SocialLoginPath      = "/auth/social-login"
	SendVerificationPath = "/auth/send-verification"
	VerifyEmailPath      = "/auth/verify-email"
	ResetPasswordPath    = "/auth/password-reset/verify"
	DeleteAccountPath    = "/auth/account"
	ProfilePath          = "/user/profile"
)

// Caller performs JSON API calls. *apiclient.Client satisfies it.
type Caller interface {
	Do(ctx context.Context, method, path string, in, out any) error
}

// SessionOwner is the part of the session manager the auth calls drive
type SessionOwner interface {
	SetAuthData(ctx context.Context, accessToken, refreshToken string, user users.User) error
	ClearAuth(ctx context.Context) error
	Logout(ctx context.Context) error
}

type API struct {
	caller   Caller
	sessions SessionOwner
}

func New(caller Caller, sessions SessionOwner) *API {
	return &API{
		caller:   caller,
		sessions: sessions,
	}
}

// Login authenticates with email and password and installs the returned session
func (a *API) Login(ctx context.Context, email, password string) (*authmodel.AuthResponse, error) {
	return a.authenticate(ctx, LoginPath, authmodel.LoginRequest{Email: email, Password: password})
}

// Signup creates an account and installs the returned session
func (a *API) Signup(ctx context.Context, req authmodel.SignupRequest) (*authmodel.AuthResponse, error) {
	return a.authenticate(ctx, SignupPath, req)
}

// SocialLogin exchanges a provider token for a session. IsNewUser in the response tells the caller
// whether to continue with onboarding.
func (a *API) SocialLogin(ctx context.Context, provider, providerToken string) (*authmodel.AuthResponse, error) {
	return a.authenticate(ctx, SocialLoginPath, authmodel.SocialLoginRequest{Provider: provider, Token: providerToken})
}

func (a *API) authenticate(ctx context.Context, path string, in any) (*authmodel.AuthResponse, error) {
	var resp authmodel.AuthResponse
	if err := a.caller.Do(ctx, http.MethodPost, path, in, &resp); err != nil {
		return nil, err
	}
	if pair := resp.Tokens(); !pair.Valid() {
		return nil, fmt.Errorf("[authapi %s] %w", path, clienterrors.ErrInvalidTokenResponse)
	}
	if err := a.sessions.SetAuthData(ctx, resp.AccessToken, resp.RefreshToken, resp.User); err != nil {
		return nil, fmt.Errorf("[authapi %s] failed to store session: %w", path, err)
	}
	return &resp, nil
}

func (a *API) SendVerification(ctx context.Context, email string) (*authmodel.StatusResponse, error) {
	return a.status(ctx, http.MethodPost, SendVerificationPath, authmodel.SendVerificationRequest{Email: email})
}

func (a *API) VerifyEmail(ctx context.Context, email, code string) (*authmodel.StatusResponse, error) {
	return a.status(ctx, http.MethodPost, VerifyEmailPath, authmodel.VerifyEmailRequest{Email: email, VerificationCode: code})
}

func (a *API) ResetPassword(ctx context.Context, email, newPassword string) (*authmodel.StatusResponse, error) {
	return a.status(ctx, http.MethodPost, ResetPasswordPath, authmodel.ResetPasswordRequest{Email: email, NewPassword: newPassword})
}

// DeleteAccount removes the account at the server and then the local session
func (a *API) DeleteAccount(ctx context.Context, email, password string) (*authmodel.StatusResponse, error) {
	resp, err := a.status(ctx, http.MethodDelete, DeleteAccountPath, authmodel.DeleteAccountRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := a.sessions.ClearAuth(ctx); err != nil {
		log.Err(err).Msg("Account deleted but local session could not be fully cleared")
	}
	return resp, nil
}

// Logout ends the session locally, telling the server when it can be reached
func (a *API) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}

// Profile fetches the signed-in user's profile
func (a *API) Profile(ctx context.Context) (*authmodel.Profile, error) {
	var resp authmodel.Envelope[authmodel.Profile]
	if err := a.caller.Do(ctx, http.MethodGet, ProfilePath, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (a *API) status(ctx context.Context, method, path string, in any) (*authmodel.StatusResponse, error) {
	var resp authmodel.StatusResponse
	if err := a.caller.Do(ctx, method, path, in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
