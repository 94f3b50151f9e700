package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-client/apierror"
	"github.com/jrsteele09/go-session-client/authmodel"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
)

// Endpoint paths relative to the API base URL
const (
	Path       = "/auth/refresh"
	LogoutPath = "/auth/logout"
)

// Exchanger trades a refresh token for a new token pair
type Exchanger interface {
	Exchange(ctx context.Context, refreshToken string) (authmodel.TokenPair, error)
}

// Revoker invalidates a refresh token at the server
type Revoker interface {
	Revoke(ctx context.Context, refreshToken string) error
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPExchanger posts the refresh token to the API directly, bypassing the request pipeline so a
// refresh can never trigger another refresh.
type HTTPExchanger struct {
	baseURL string
	doer    Doer
	timeout time.Duration
}

var (
	_ Exchanger = (*HTTPExchanger)(nil)
	_ Revoker   = (*HTTPExchanger)(nil)
)

func NewHTTPExchanger(baseURL string, doer Doer, timeout time.Duration) *HTTPExchanger {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &HTTPExchanger{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		timeout: timeout,
	}
}

func (e *HTTPExchanger) Exchange(ctx context.Context, refreshToken string) (authmodel.TokenPair, error) {
	respBody, err := e.post(ctx, Path, refreshToken)
	if err != nil {
		return authmodel.TokenPair{}, err
	}

	var pair authmodel.TokenPair
	if err := json.Unmarshal(respBody, &pair); err != nil {
		return authmodel.TokenPair{}, clienterrors.Wrapf(clienterrors.ErrInvalidTokenResponse, "decode: %v", err)
	}
	if !pair.Valid() {
		return authmodel.TokenPair{}, clienterrors.ErrInvalidTokenResponse
	}
	return pair, nil
}

// Revoke calls POST /auth/logout so the server forgets the refresh token
func (e *HTTPExchanger) Revoke(ctx context.Context, refreshToken string) error {
	_, err := e.post(ctx, LogoutPath, refreshToken)
	return err
}

func (e *HTTPExchanger) post(ctx context.Context, path, refreshToken string) ([]byte, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	body, err := json.Marshal(authmodel.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := e.doer.Do(req)
	if err != nil {
		return nil, apierror.Normalize(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierror.Normalize(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug().Str("path", path).Int("status", resp.StatusCode).Msg("auth call rejected")
		return nil, apierror.FromResponse(resp.StatusCode, respBody)
	}
	return respBody, nil
}
