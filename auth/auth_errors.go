package auth

import clienterrors "github.com/jrsteele09/go-session-client/internal/errors"

var (
	ErrInvalidCredentials = clienterrors.ErrInvalidCredentials
	ErrUserExists         = clienterrors.ErrUserExists
	ErrUserNotFound       = clienterrors.ErrUserNotFound
	ErrInvalidCode        = clienterrors.ErrInvalidCode
	ErrEmailNotVerified   = clienterrors.Wrapf(clienterrors.ErrInvalidCredentials, "email not verified")
	ErrWeakPassword       = clienterrors.Wrapf(clienterrors.ErrInvalidCredentials, "weak password")
)
