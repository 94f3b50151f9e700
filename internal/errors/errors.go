package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session client
var (
	// Session errors
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrInvalidAuthData  = errors.New("invalid auth data")
	ErrSessionReplaced  = errors.New("session replaced during refresh")
	ErrRefreshFailed    = errors.New("token refresh failed")
	ErrStoreUnavailable = errors.New("token store unavailable")

	// Token errors
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrInvalidTokenResponse = errors.New("invalid token response")

	// Account errors (dev server)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCode        = errors.New("invalid verification code")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join combines errors, dropping nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
