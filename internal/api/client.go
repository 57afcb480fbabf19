// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the authenticated HTTP gateway to the campuschat
// backend.
//
// The client attaches the persisted bearer token to outgoing requests and
// transparently refreshes it when the backend answers 401. The refresh
// token itself is an HTTP-only cookie held in the client's cookie jar; this
// code never reads or writes it directly. Refreshes are single-flight:
// concurrent requests that hit 401 while a refresh is pending wait for the
// pending attempt and observe its outcome instead of issuing their own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/campuschat/internal/storage"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the base URL of the campuschat backend.
	DefaultBaseURL = "http://localhost:8000/api/v1"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 4 * 1024 * 1024 // 4MB

	// userAgent identifies the client to the backend.
	userAgent = "campuschat/0.2.0"
)

// =============================================================================
// CLIENT
// =============================================================================

// Client is the authenticated gateway to the backend API.
type Client struct {
	// confMu guards baseURL and httpClient, which a config reload may
	// swap while requests are in flight.
	confMu     sync.RWMutex
	baseURL    string
	httpClient *http.Client

	store   storage.KV
	limiter *rate.Limiter

	// refresh is the in-flight refresh attempt, nil when idle. Guarded by
	// refreshMu; at most one refresh is ever in flight.
	refreshMu sync.Mutex
	refresh   *refreshAttempt
}

// refreshAttempt is the shared outcome of one token refresh. done is closed
// exactly once, after err is set; waiters block on done and read err.
type refreshAttempt struct {
	done chan struct{}
	err  error
}

// NewClient creates a gateway client persisting credentials in store.
//
// The cookie jar holds the HTTP-only refresh cookie set by the login
// endpoint, so refresh calls are authenticated the same way a browser's
// would be.
func NewClient(baseURL string, store storage.KV) *Client {
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		store: store,
		// Client-side throttle: bursts of UI actions must not hammer
		// the backend.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.SetTimeout(timeout)
	return c
}

// SetTimeout updates the request timeout. The underlying HTTP client is
// replaced rather than mutated, so requests already in flight keep the
// timeout they started with.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.confMu.Lock()
	hc := *c.httpClient
	hc.Timeout = timeout
	c.httpClient = &hc
	c.confMu.Unlock()
}

// SetBaseURL points the client at a different backend, for config reloads.
func (c *Client) SetBaseURL(baseURL string) {
	c.confMu.Lock()
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	c.confMu.Unlock()
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	c.confMu.RLock()
	defer c.confMu.RUnlock()
	return c.baseURL
}

// =============================================================================
// TOKEN STATE
// =============================================================================

// Token returns the persisted access token, or "" when absent.
func (c *Client) Token() string {
	var token string
	if err := c.store.Get(storage.KeyAccessToken, &token); err != nil {
		return ""
	}
	return token
}

// HasToken reports whether an access token is persisted.
func (c *Client) HasToken() bool {
	return c.Token() != ""
}

// setToken persists a new access token.
func (c *Client) setToken(token string) error {
	return c.store.Set(storage.KeyAccessToken, token)
}

// clearCredentials drops the persisted token and cached user profile.
func (c *Client) clearCredentials() {
	if err := c.store.Remove(storage.KeyAccessToken); err != nil {
		log.Printf("[WARN] failed to clear access token: %v", err)
	}
	if err := c.store.Remove(storage.KeyUser); err != nil {
		log.Printf("[WARN] failed to clear cached user: %v", err)
	}
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do performs one API call and decodes the JSON response into out (which
// may be nil). When reauth is true a 401 answer triggers the single-flight
// refresh protocol and exactly one retry; unauthenticated endpoints (login,
// signup, refresh itself) pass reauth=false and see the 401 as-is.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any, reauth bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	// If a refresh is already pending, suspend until it settles so this
	// request picks up the fresh token instead of burning its retry.
	if reauth {
		if err := c.awaitRefresh(ctx); err != nil {
			return err
		}
	}

	resp, err := c.send(ctx, method, path, contentType, body)
	if err != nil {
		// Network failure: propagate as-is, no refresh attempt.
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && reauth {
		resp.Body.Close()

		if err := c.refreshToken(ctx); err != nil {
			return err
		}

		// Retry the original request exactly once with the new token.
		resp, err = c.send(ctx, method, path, contentType, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// send issues a single HTTP request, attaching the bearer token if present.
// Attaching the header never blocks; the token is read from local state.
func (c *Client) send(ctx context.Context, method, path, contentType string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	c.confMu.RLock()
	base, hc := c.baseURL, c.httpClient
	c.confMu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", userAgent)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return data, nil
}

// =============================================================================
// SINGLE-FLIGHT TOKEN REFRESH
// =============================================================================

// awaitRefresh blocks until any in-flight refresh settles. The outcome is
// deliberately ignored here: the caller proceeds with whatever token state
// the refresh left behind and handles its own 401 if that state is bad.
func (c *Client) awaitRefresh(ctx context.Context) error {
	c.refreshMu.Lock()
	att := c.refresh
	c.refreshMu.Unlock()

	if att == nil {
		return nil
	}
	select {
	case <-att.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refreshToken runs the single-flight refresh protocol. The first caller
// performs the refresh; everyone else waits on the shared attempt and
// returns its error. The attempt is always settled, even if doRefresh
// panics the channel close runs in a deferred block, so waiters can never
// deadlock.
func (c *Client) refreshToken(ctx context.Context) error {
	c.refreshMu.Lock()
	if att := c.refresh; att != nil {
		c.refreshMu.Unlock()
		select {
		case <-att.done:
			return att.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	att := &refreshAttempt{done: make(chan struct{})}
	c.refresh = att
	c.refreshMu.Unlock()

	defer func() {
		c.refreshMu.Lock()
		c.refresh = nil
		c.refreshMu.Unlock()
		close(att.done)
	}()

	att.err = c.doRefresh(ctx)
	return att.err
}

// doRefresh calls the refresh endpoint. The refresh cookie rides along via
// the jar; no body or bearer header is needed. Any failure is terminal:
// local credentials are wiped and ErrSessionExpired is returned.
func (c *Client) doRefresh(ctx context.Context) error {
	c.confMu.RLock()
	base, hc := c.baseURL, c.httpClient
	c.confMu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/refresh", nil)
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		c.clearCredentials()
		return fmt.Errorf("%w: refresh request failed: %v", ErrSessionExpired, err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		c.clearCredentials()
		return fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.clearCredentials()
		return fmt.Errorf("%w: refresh rejected with status %d", ErrSessionExpired, resp.StatusCode)
	}

	var token TokenResponse
	if err := json.Unmarshal(data, &token); err != nil || token.AccessToken == "" {
		c.clearCredentials()
		return fmt.Errorf("%w: malformed refresh response", ErrSessionExpired)
	}

	if err := c.setToken(token.AccessToken); err != nil {
		c.clearCredentials()
		return fmt.Errorf("%w: failed to persist token: %v", ErrSessionExpired, err)
	}

	log.Printf("[DEBUG] access token refreshed")
	return nil
}
