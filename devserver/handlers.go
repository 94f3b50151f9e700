package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jrsteele09/go-session-client/auth"
	"github.com/jrsteele09/go-session-client/authmodel"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20
)

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := s.accounts.Login(req.Email, req.Password)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.SignupRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := s.accounts.Signup(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (s *Server) SocialLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.SocialLoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := s.accounts.SocialLogin(req.Provider, req.Token)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) SendVerificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.SendVerificationRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.accounts.SendVerification(req.Email); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.StatusResponse{Success: true, Message: "verification code sent"})
	}
}

func (s *Server) VerifyEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.VerifyEmailRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.accounts.VerifyEmail(req.Email, req.VerificationCode); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.StatusResponse{Success: true, Message: "email verified"})
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.ResetPasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.accounts.ResetPassword(req.Email, req.NewPassword); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.StatusResponse{Success: true, Message: "password updated"})
	}
}

// RefreshHandler exchanges a refresh token for a new pair. The presented token is consumed.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.RefreshRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "refreshToken is required")
			return
		}
		pair, err := s.accounts.Refresh(req.RefreshToken)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.RefreshRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		s.accounts.Logout(req.RefreshToken)
		writeJSON(w, http.StatusOK, authmodel.MessageResponse{Message: "logged out"})
	}
}

func (s *Server) DeleteAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "no authenticated user")
			return
		}
		var req authmodel.DeleteAccountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.accounts.DeleteAccount(userID, req.Email, req.Password); err != nil {
			// a 401 here would send the client into a token refresh
			if clienterrors.Is(err, auth.ErrInvalidCredentials) {
				writeJSONError(w, http.StatusForbidden, "forbidden", "email or password does not match")
				return
			}
			writeServiceError(w, err)
			return
		}
		if err := s.accounts.RevokeAccessToken(accessTokenFromContext(r.Context())); err != nil {
			log.Warn().Err(err).Msg("failed to revoke access token of deleted account")
		}
		writeJSON(w, http.StatusOK, authmodel.StatusResponse{Success: true, Message: "account deleted"})
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "no authenticated user")
			return
		}
		profile, err := s.accounts.Profile(userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.Envelope[*authmodel.Profile]{Success: true, Data: profile})
	}
}

// RevokeAccessHandler denylists the caller's access token. The refresh token stays valid.
func (s *Server) RevokeAccessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.accounts.RevokeAccessToken(accessTokenFromContext(r.Context())); err != nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid access token")
			return
		}
		writeJSON(w, http.StatusOK, authmodel.StatusResponse{Success: true, Message: "access token revoked"})
	}
}

// decodeJSON reads the request body into v, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, errorCode, message string) {
	writeJSON(w, status, authmodel.ErrorResponse{Error: errorCode, Message: message})
}

// writeServiceError maps account service errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case clienterrors.Is(err, auth.ErrEmailNotVerified):
		writeJSONError(w, http.StatusBadRequest, "email_not_verified", "email address is not verified")
	case clienterrors.Is(err, auth.ErrWeakPassword):
		writeJSONError(w, http.StatusBadRequest, "weak_password", err.Error())
	case clienterrors.Is(err, auth.ErrInvalidCode):
		writeJSONError(w, http.StatusBadRequest, "invalid_code", "invalid verification code")
	case clienterrors.Is(err, auth.ErrInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case clienterrors.Is(err, clienterrors.ErrInvalidRefreshToken):
		writeJSONError(w, http.StatusUnauthorized, "invalid_grant", "refresh token is invalid or expired")
	case clienterrors.Is(err, auth.ErrUserExists):
		writeJSONError(w, http.StatusConflict, "user_exists", "an account with this email already exists")
	case clienterrors.Is(err, auth.ErrUserNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "user not found")
	default:
		log.Err(err).Msg("unhandled account service error")
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
