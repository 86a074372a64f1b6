package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"stagefront/internal/session"
	"stagefront/internal/shared/config"
	"stagefront/pkg/logger"
)

// identityHeader carries the acting user's id alongside the bearer token.
const identityHeader = "X-User-Id"

// clearedTokenLimit bounds the rejected-token set. Hitting the limit
// discards the whole set; a very old token can then re-fire the callback,
// which is harmless.
const clearedTokenLimit = 1024

// Options tunes a single request.
type Options struct {
	// Query parameters appended to the request URL.
	Query map[string]string
	// Timeout overrides the client default for this call. Ignored when
	// the caller's context already carries a deadline.
	Timeout time.Duration
}

// Transport is the request surface consumed by the domain services.
// *Client satisfies it; tests substitute fakes.
type Transport interface {
	Request(ctx context.Context, method, path string, body interface{}, opts *Options) ([]byte, error)
}

// Client issues requests against the remote ticketing API. It injects the
// ambient session's credential and identity headers, classifies failures,
// and clears the session on authentication failure.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	sessions       session.Store
	devUserID      string
	defaultTimeout time.Duration
	uploadTimeout  time.Duration
	log            *logger.Logger

	// onAuthFailure is invoked at most once per token; the UI layer
	// decides how to react (the client never drives navigation).
	onAuthFailure func(ctx context.Context, err *APIError)

	mu      sync.Mutex
	cleared map[string]struct{}
}

// NewClient creates a transport client for the configured upstream API.
func NewClient(cfg config.UpstreamConfig, sessions session.Store, log *logger.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:     &http.Client{},
		sessions:       sessions,
		devUserID:      cfg.DevUserID,
		defaultTimeout: cfg.RequestTimeout,
		uploadTimeout:  cfg.UploadTimeout,
		log:            log,
		cleared:        make(map[string]struct{}),
	}
}

// OnAuthFailure registers the callback fired when the upstream rejects the
// session's credential.
func (c *Client) OnAuthFailure(fn func(ctx context.Context, err *APIError)) {
	c.onAuthFailure = fn
}

// Request issues an HTTP request and returns the raw response body.
// JSON bodies are returned as-is for the caller to decode; error responses
// are classified into *APIError with an extracted message.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, opts *Options) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, cancel, err := c.newRequest(ctx, method, path, payload, opts, c.defaultTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req)
}

// Upload posts a multipart or binary payload. The caller-supplied content
// type is preserved so a multipart boundary survives intact.
func (c *Client) Upload(ctx context.Context, path, contentType string, payload io.Reader, opts *Options) ([]byte, error) {
	req, cancel, err := c.newRequest(ctx, http.MethodPost, path, payload, opts, c.uploadTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload io.Reader, opts *Options, fallbackTimeout time.Duration) (*http.Request, context.CancelFunc, error) {
	timeout := fallbackTimeout
	if opts != nil && opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	// Derive a deadline only when the caller did not bring one.
	cancel := context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok && timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolveURL(path, opts), payload)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	c.attachIdentity(ctx, req)

	return req, cancel, nil
}

func (c *Client) resolveURL(path string, opts *Options) string {
	full := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if opts == nil || len(opts.Query) == 0 {
		return full
	}
	values := url.Values{}
	for k, v := range opts.Query {
		values.Set(k, v)
	}
	return full + "?" + values.Encode()
}

// attachIdentity sets the bearer and identity headers from the ambient
// session. With no user record the development default identity is used;
// that is a deliberate weakening for local testing, not a security boundary.
func (c *Client) attachIdentity(ctx context.Context, req *http.Request) {
	sess := session.FromContext(ctx)
	if sess != nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	if sess != nil && sess.User != nil && sess.User.ID != "" {
		req.Header.Set(identityHeader, sess.User.ID)
	} else {
		req.Header.Set(identityHeader, c.devUserID)
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	ctx := req.Context()
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.LogUpstreamError(ctx, req.Method, req.URL.Path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	c.log.LogUpstreamRequest(ctx, req.Method, req.URL.Path, resp.StatusCode, time.Since(started))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: extractMessage(body, resp.Header.Get("Content-Type"), resp.StatusCode),
		Body:    body,
	}

	if apiErr.IsAuthFailure() {
		c.handleAuthFailure(ctx, apiErr)
	}

	return nil, apiErr
}

// handleAuthFailure clears the rejected session and notifies the registered
// callback, at most once per token.
func (c *Client) handleAuthFailure(ctx context.Context, apiErr *APIError) {
	sess := session.FromContext(ctx)
	if sess == nil || sess.Token == "" {
		return
	}
	if !c.markCleared(sess.Token) {
		return
	}

	c.log.LogAuthFailure(ctx, apiErr.Message)
	if err := c.sessions.Clear(ctx, sess.Token); err != nil {
		c.log.WithError(err).Warn("failed to clear session after auth failure")
	}
	if c.onAuthFailure != nil {
		c.onAuthFailure(ctx, apiErr)
	}
}

// markCleared records a rejected token, reporting whether it was new. The
// set resets at clearedTokenLimit so it never grows with process lifetime.
func (c *Client) markCleared(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.cleared[token]; ok {
		return false
	}
	if len(c.cleared) >= clearedTokenLimit {
		c.cleared = make(map[string]struct{})
	}
	c.cleared[token] = struct{}{}
	return true
}
