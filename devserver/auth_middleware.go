package devserver

import (
	"context"
	"net/http"
	"strings"

	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyAccessToken stores the raw bearer token
	ContextKeyAccessToken ContextKey = "access_token"
)

// RequireAuth is middleware that validates a Bearer access token and injects its user ID
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid Authorization header format")
				return
			}

			userID, err := s.accounts.VerifyAccessToken(parts[1])
			if err != nil {
				if clienterrors.Is(err, clienterrors.ErrTokenExpired) {
					writeJSONError(w, http.StatusUnauthorized, "token_expired", "access token expired")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
			ctx = context.WithValue(ctx, ContextKeyAccessToken, parts[1])
			next(w, r.WithContext(ctx))
		}
	}
}

// userIDFromContext returns the user ID placed by RequireAuth
func userIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(int64)
	return id, ok
}

func accessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeyAccessToken).(string)
	return token
}
