// Package apiclient is the outbound HTTP path to the API. It attaches the session's bearer token,
// and on a 401 from a protected endpoint refreshes the session and retries the request once.
package apiclient

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
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-session-client/apierror"
	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Session is what the pipeline needs from the session owner: the current token, and a way to
// replace a token the server rejected.
type Session interface {
	oauth2.TokenSource
	ReactiveRefresh(ctx context.Context, failedToken string) (string, error)
}

// Request describes one API call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

type Client struct {
	baseURL string
	doer    Doer
	session Session
	timeout time.Duration
	metrics *metrics.Metrics
}

type Option func(*Client)

// WithTimeout bounds each attempt of a request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithConfig(cfg config.SessionConfig) Option {
	return WithTimeout(cfg.GetRequestTimeout())
}

func New(baseURL string, doer Doer, session Session, opts ...Option) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		session: session,
		timeout: config.DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs req. A non-2xx outcome is returned as an *apierror.Error alongside the response.
// A 401 from a protected endpoint triggers one session refresh and one retry of the identical
// request; if the refresh fails the original 401 is returned, wrapping the refresh error.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	requestID := uuid.NewString()
	public := IsPublic(req.Path)

	var sentToken string
	if !public {
		sentToken = c.currentToken()
	}

	resp, err := c.sendOnce(ctx, req, requestID, public, sentToken)
	if err != nil {
		return nil, err
	}
	if isSuccess(resp.Status) {
		return resp, nil
	}

	failure := apierror.FromResponse(resp.Status, resp.Body)
	if resp.Status != http.StatusUnauthorized || public {
		return resp, failure
	}

	log.Debug().Str("request_id", requestID).Str("path", req.Path).Msg("Unauthorized, refreshing session")
	newToken, err := c.session.ReactiveRefresh(ctx, sentToken)
	if err != nil {
		failure.Err = err
		return resp, failure
	}

	retried, err := c.sendOnce(ctx, req, requestID, false, newToken)
	if err != nil {
		c.metrics.ObserveRetry(err)
		return nil, err
	}
	if !isSuccess(retried.Status) {
		retryErr := apierror.FromResponse(retried.Status, retried.Body)
		c.metrics.ObserveRetry(retryErr)
		return retried, retryErr
	}
	c.metrics.ObserveRetry(nil)
	return retried, nil
}

// Do sends a JSON request built from in and decodes the response body into out. Either may be nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	req := Request{Method: method, Path: path}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.Body = body
	}

	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &apierror.Error{
			Code:    apierror.CodeUnknown,
			Status:  resp.Status,
			Message: "unexpected response from server",
			Err:     err,
		}
	}
	return nil
}

func (c *Client) currentToken() string {
	tok, err := c.session.Token()
	if err != nil || tok == nil {
		return ""
	}
	return tok.AccessToken
}

func (c *Client) sendOnce(ctx context.Context, req Request, requestID string, public bool, accessToken string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, apierror.Normalize(fmt.Errorf("build request: %w", err))
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	if public {
		httpReq.Header.Del("Authorization")
	} else if accessToken != "" {
		(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	start := time.Now()
	httpResp, err := c.doer.Do(httpReq)
	if err != nil {
		log.Debug().Err(err).Str("request_id", requestID).Str("path", req.Path).Msg("Request failed")
		return nil, apierror.Normalize(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apierror.Normalize(err)
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API call")

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   respBody,
	}, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}
