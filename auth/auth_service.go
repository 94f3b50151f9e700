package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-session-client/authmodel"
	"github.com/jrsteele09/go-session-client/devserver/rotation"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/token/jwt"
	"github.com/jrsteele09/go-session-client/users"
	"github.com/rs/zerolog/log"
)

const (
	// VerificationCode is the only code the dev server accepts
	VerificationCode = "123456"

	verificationTimeout = 15 * time.Minute
)

// Repos holds all repository dependencies for the AccountService
type Repos struct {
	Users         users.Repo       // Repository for accounts
	Verifications VerificationRepo // Repository for email verification state
}

// AccountService implements the account and token endpoints of the dev server.
type AccountService struct {
	repos        Repos
	tokenCreator *jwt.Creator
	refresh      *rotation.Manager
	denylist     AccessDenylist
	nowTime      func() time.Time // nowTime function (injectable for testing)
}

// AccountServiceOption defines a function type to modify the AccountService instance.
type AccountServiceOption func(*AccountService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AccountServiceOption {
	return func(as *AccountService) {
		as.nowTime = nowFunc
	}
}

// WithAccessDenylist replaces the in-memory access token denylist
func WithAccessDenylist(denylist AccessDenylist) AccountServiceOption {
	return func(as *AccountService) {
		as.denylist = denylist
	}
}

// NewAccountService initializes a new AccountService with required dependencies.
func NewAccountService(
	repos Repos,
	tokenCreator *jwt.Creator,
	refresh *rotation.Manager,
	options ...AccountServiceOption,
) (*AccountService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewAccountService] Users repo is required")
	}
	if repos.Verifications == nil {
		return nil, errors.New("[NewAccountService] Verifications repo is required")
	}
	if tokenCreator == nil {
		return nil, errors.New("[NewAccountService] tokenCreator is required")
	}
	if refresh == nil {
		return nil, errors.New("[NewAccountService] refresh manager is required")
	}

	as := &AccountService{
		repos:        repos,
		tokenCreator: tokenCreator,
		refresh:      refresh,
		denylist:     NewMemoryDenylist(),
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// SendVerification starts verification of an email address. The code is logged, not mailed.
func (as *AccountService) SendVerification(email string) error {
	email = users.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("[SendVerification] %w: email is required", ErrInvalidCredentials)
	}
	if err := as.repos.Verifications.Upsert(&Verification{
		Email:   email,
		Code:    VerificationCode,
		Expires: as.nowTime().Add(verificationTimeout),
	}); err != nil {
		return fmt.Errorf("[SendVerification] store verification: %w", err)
	}
	log.Info().Str("email", email).Str("code", VerificationCode).Msg("verification code issued")
	return nil
}

// VerifyEmail checks the code sent by SendVerification
func (as *AccountService) VerifyEmail(email, code string) error {
	email = users.NormalizeEmail(email)
	v, err := as.repos.Verifications.Get(email)
	if err != nil || v.Code != code || as.nowTime().After(v.Expires) {
		return fmt.Errorf("[VerifyEmail] %w", ErrInvalidCode)
	}
	v.Verified = true
	if err := as.repos.Verifications.Upsert(v); err != nil {
		return fmt.Errorf("[VerifyEmail] store verification: %w", err)
	}
	return nil
}

// Signup creates an account. Password accounts need a verified email first.
func (as *AccountService) Signup(req authmodel.SignupRequest) (*authmodel.AuthResponse, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("[Signup] %w: email is required", ErrInvalidCredentials)
	}
	if _, err := as.repos.Users.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("[Signup] %w", ErrUserExists)
	}

	account := &users.Account{
		User:           users.User{Email: email, Username: req.Username},
		SocialProvider: req.SocialProvider,
		DateJoined:     as.nowTime(),
	}
	if req.SocialProvider == "" {
		if !as.isVerified(email) {
			return nil, fmt.Errorf("[Signup] %w", ErrEmailNotVerified)
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			return nil, fmt.Errorf("[Signup] %w: %v", ErrWeakPassword, err)
		}
		hash, err := users.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("[Signup] hash password: %w", err)
		}
		account.PasswordHash = hash
		account.Verified = true
	}
	if account.Username == "" {
		account.Username = email
	}

	if err := as.repos.Users.Create(account); err != nil {
		return nil, fmt.Errorf("[Signup] create account: %w", err)
	}
	_ = as.repos.Verifications.Delete(email)
	return as.issue(account, true)
}

// Login authenticates with email and password
func (as *AccountService) Login(email, password string) (*authmodel.AuthResponse, error) {
	account, err := as.repos.Users.GetByEmail(email)
	if err != nil || !account.CheckPassword(password) {
		return nil, fmt.Errorf("[Login] %w", ErrInvalidCredentials)
	}
	account.LastLogin = as.nowTime()
	if err := as.repos.Users.Update(account); err != nil {
		return nil, fmt.Errorf("[Login] update account: %w", err)
	}
	return as.issue(account, false)
}

// SocialLogin signs in with a provider token, creating the account on first use.
// The provider token is treated as the provider's subject; there is no provider to ask.
func (as *AccountService) SocialLogin(provider, providerToken string) (*authmodel.AuthResponse, error) {
	if provider == "" || providerToken == "" {
		return nil, fmt.Errorf("[SocialLogin] %w: provider and token are required", ErrInvalidCredentials)
	}

	account, err := as.repos.Users.GetBySocial(provider, providerToken)
	if err == nil {
		account.LastLogin = as.nowTime()
		if err := as.repos.Users.Update(account); err != nil {
			return nil, fmt.Errorf("[SocialLogin] update account: %w", err)
		}
		return as.issue(account, false)
	}
	if !clienterrors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("[SocialLogin] lookup: %w", err)
	}

	email := fmt.Sprintf("%s@%s.social", providerToken, provider)
	account = &users.Account{
		User:           users.User{Email: email, Username: providerToken},
		SocialProvider: provider,
		SocialSubject:  providerToken,
		Verified:       true,
		DateJoined:     as.nowTime(),
		LastLogin:      as.nowTime(),
	}
	if err := as.repos.Users.Create(account); err != nil {
		return nil, fmt.Errorf("[SocialLogin] create account: %w", err)
	}
	return as.issue(account, true)
}

// ResetPassword sets a new password for a verified email and revokes the user's refresh token
func (as *AccountService) ResetPassword(email, newPassword string) error {
	email = users.NormalizeEmail(email)
	if !as.isVerified(email) {
		return fmt.Errorf("[ResetPassword] %w", ErrEmailNotVerified)
	}
	account, err := as.repos.Users.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("[ResetPassword] %w", err)
	}
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return fmt.Errorf("[ResetPassword] %w: %v", ErrWeakPassword, err)
	}
	hash, err := users.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("[ResetPassword] hash password: %w", err)
	}
	account.PasswordHash = hash
	if err := as.repos.Users.Update(account); err != nil {
		return fmt.Errorf("[ResetPassword] update account: %w", err)
	}
	_ = as.repos.Verifications.Delete(email)
	as.refresh.RevokeUser(account.ID)
	return nil
}

// Refresh consumes refreshToken and returns a fresh pair
func (as *AccountService) Refresh(refreshToken string) (*authmodel.TokenPair, error) {
	userID, next, err := as.refresh.Rotate(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("[Refresh] %w", err)
	}
	account, err := as.repos.Users.GetByID(userID)
	if err != nil {
		as.refresh.Revoke(next)
		return nil, fmt.Errorf("[Refresh] %w", clienterrors.ErrInvalidRefreshToken)
	}
	access, err := as.tokenCreator.CreateAccessToken(&account.User)
	if err != nil {
		return nil, fmt.Errorf("[Refresh] %w", err)
	}
	return &authmodel.TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// Logout revokes refreshToken. Unknown tokens are not an error.
func (as *AccountService) Logout(refreshToken string) {
	as.refresh.Revoke(refreshToken)
}

// DeleteAccount removes the caller's account after re-checking the password
func (as *AccountService) DeleteAccount(userID int64, email, password string) error {
	account, err := as.repos.Users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("[DeleteAccount] %w", err)
	}
	if users.NormalizeEmail(email) != account.Email {
		return fmt.Errorf("[DeleteAccount] %w", ErrInvalidCredentials)
	}
	if account.SocialProvider == "" && !account.CheckPassword(password) {
		return fmt.Errorf("[DeleteAccount] %w", ErrInvalidCredentials)
	}
	if err := as.repos.Users.Delete(account.Email); err != nil {
		return fmt.Errorf("[DeleteAccount] %w", err)
	}
	as.refresh.RevokeUser(account.ID)
	return nil
}

// Profile returns the profile of userID
func (as *AccountService) Profile(userID int64) (*authmodel.Profile, error) {
	account, err := as.repos.Users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("[Profile] %w", err)
	}
	return &authmodel.Profile{
		ID:        account.ID,
		Email:     account.Email,
		Username:  account.Username,
		CreatedAt: account.DateJoined.UTC().Format(time.RFC3339),
	}, nil
}

// VerifyAccessToken returns the user ID carried by a valid, unrevoked access token
func (as *AccountService) VerifyAccessToken(accessToken string) (int64, error) {
	claims, err := as.tokenCreator.Claims(accessToken)
	if err != nil {
		return 0, err
	}
	if as.denylist.IsRevoked(claims.ID, as.nowTime()) {
		return 0, clienterrors.Wrapf(clienterrors.ErrInvalidToken, "access token revoked")
	}
	return claims.UserID()
}

// RevokeAccessToken denylists a valid access token until it expires
func (as *AccountService) RevokeAccessToken(accessToken string) error {
	claims, err := as.tokenCreator.Claims(accessToken)
	if err != nil {
		return fmt.Errorf("[RevokeAccessToken] %w", err)
	}
	if n := as.denylist.Prune(as.nowTime()); n > 0 {
		log.Debug().Int("pruned", n).Msg("expired entries dropped from access denylist")
	}
	as.denylist.Revoke(claims.ID, claims.ExpiresAt.Time)
	return nil
}

func (as *AccountService) issue(account *users.Account, isNew bool) (*authmodel.AuthResponse, error) {
	access, err := as.tokenCreator.CreateAccessToken(&account.User)
	if err != nil {
		return nil, err
	}
	refreshToken, err := as.refresh.Create(account.ID)
	if err != nil {
		return nil, err
	}
	return &authmodel.AuthResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int(as.tokenCreator.ExpiresIn() / time.Second),
		User:         account.User,
		IsNewUser:    isNew,
	}, nil
}

func (as *AccountService) isVerified(email string) bool {
	v, err := as.repos.Verifications.Get(email)
	return err == nil && v.Verified
}
