package refresh_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-client/apierror"
	"github.com/jrsteele09/go-session-client/authmodel"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/token/refresh"
	"github.com/stretchr/testify/require"
)

func TestHTTPExchanger(t *testing.T) {
	var got authmodel.RefreshRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		if r.URL.Path == "/api/v1/auth/logout" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		require.Equal(t, "/api/v1/auth/refresh", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		switch got.RefreshToken {
		case "good":
			_ = json.NewEncoder(w).Encode(authmodel.TokenPair{AccessToken: "a2", RefreshToken: "r2"})
		case "partial":
			_ = json.NewEncoder(w).Encode(authmodel.TokenPair{AccessToken: "a2"})
		case "slow":
			time.Sleep(200 * time.Millisecond)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"refresh token revoked"}`))
		}
	}))
	defer srv.Close()

	ex := refresh.NewHTTPExchanger(srv.URL+"/api/v1/", srv.Client(), time.Second)
	ctx := context.Background()

	t.Run("rotated pair", func(t *testing.T) {
		pair, err := ex.Exchange(ctx, "good")
		require.NoError(t, err)
		require.Equal(t, authmodel.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, pair)
		require.Equal(t, "good", got.RefreshToken)
	})

	t.Run("missing refresh token in response", func(t *testing.T) {
		_, err := ex.Exchange(ctx, "partial")
		require.ErrorIs(t, err, clienterrors.ErrInvalidTokenResponse)
	})

	t.Run("rejected", func(t *testing.T) {
		_, err := ex.Exchange(ctx, "revoked")
		require.True(t, apierror.IsCode(err, apierror.CodeUnauthorized))
		require.Equal(t, http.StatusUnauthorized, apierror.StatusOf(err))
		require.Contains(t, err.Error(), "refresh token revoked")
	})

	t.Run("revoke", func(t *testing.T) {
		require.NoError(t, ex.Revoke(ctx, "good"))
	})

	t.Run("timeout", func(t *testing.T) {
		short := refresh.NewHTTPExchanger(srv.URL+"/api/v1", srv.Client(), 20*time.Millisecond)
		_, err := short.Exchange(ctx, "slow")
		require.True(t, apierror.IsCode(err, apierror.CodeTimeout))
	})
}
