// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/jeranaias/ptutor-tui/internal/config"
	"github.com/jeranaias/ptutor-tui/internal/logging"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is where the backend listens in development.
	DefaultBaseURL = "http://127.0.0.1:8000/"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024

	// pathPrefix is prepended to every endpoint path.
	pathPrefix = "v1/"

	userAgent = "ptutor/1.0"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// TokenSource supplies a current ID token for authenticated calls.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// IDToken implements TokenSource.
func (f TokenFunc) IDToken(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken is a TokenSource that always returns the same token.
func StaticToken(token string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) { return token, nil })
}

// Tracer records the duration and outcome of a named operation.
type Tracer interface {
	Trace(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

type nopTracer struct{}

func (nopTracer) Trace(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the backend REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	tracer  Tracer
	logger  logging.Logger
}

// New creates a client for baseURL. tokens may be nil when only Register
// will be called.
func New(baseURL string, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: normalizeBase(baseURL),
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
		tracer:  nopTracer{},
	}
}

// NewFromConfig creates a client configured from cfg.
func NewFromConfig(cfg *config.Config, tokens TokenSource) *Client {
	c := New(cfg.API.BaseURL, tokens).WithTimeout(cfg.API.Timeout())
	if cfg.API.RateLimit > 0 {
		c = c.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst)
	}
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.http.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// WithRateLimit caps outgoing requests at rps with the given burst.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithTracer records every operation through t.
func (c *Client) WithTracer(t Tracer) *Client {
	if t == nil {
		t = nopTracer{}
	}
	c.tracer = t
	return c
}

// WithLogger sets the request logger. Without one the process default is used.
func (c *Client) WithLogger(l logging.Logger) *Client {
	c.logger = l
	return c
}

// BaseURL returns the normalised base URL (always ending in "/").
func (c *Client) BaseURL() string { return c.baseURL }

func normalizeBase(u string) string {
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

// =============================================================================
// REQUEST PIPELINE
// =============================================================================

// request describes one call to the backend.
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	out    interface{}
	// public requests are sent without an Authorization header.
	public bool
}

// do performs r inside a trace named name.
func (c *Client) do(ctx context.Context, name string, r request) error {
	return c.tracer.Trace(ctx, name, func(ctx context.Context) error {
		return c.send(ctx, r)
	})
}

func (c *Client) send(ctx context.Context, r request) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limiter")
		}
	}

	var token string
	if !r.public {
		if c.tokens == nil {
			return ErrNoTokenSource
		}
		t, err := c.tokens.IDToken(ctx)
		if err != nil {
			return errors.Wrap(err, "get ID token")
		}
		token = t
	}

	target := c.baseURL + pathPrefix + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	c.setHeaders(req, token)

	c.logRequest(req)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()
	c.logResponse(req, resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, body)
	}

	if r.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, r.out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

// setHeaders sets the headers sent with every request.
func (c *Client) setHeaders(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// readResponse reads the body, refusing anything over MaxResponseSize.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	if len(body) > MaxResponseSize {
		return nil, errors.Wrapf(ErrResponseTooLarge, "limit is %d bytes", MaxResponseSize)
	}
	return body, nil
}

// logRequest logs method and path only. Headers carry the ID token and
// bodies may carry passwords.
func (c *Client) logRequest(req *http.Request) {
	c.log().Debug("API Request: " + req.Method + " " + req.URL.Path)
}

func (c *Client) log() logging.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logging.Default()
}

func (c *Client) logResponse(req *http.Request, resp *http.Response, d time.Duration) {
	c.log().Debug("API Response: "+resp.Status+" "+req.URL.Path, d.Round(time.Millisecond))
}
