// Package client is the Go SDK for the PandaMall API. It manages the
// access-token lifecycle transparently: requests carry the session's
// bearer token, and an expired token is refreshed and the request
// replayed exactly once before the failure is surfaced.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPTransport overrides the underlying transport used for API
// calls (primarily for testing).
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport.Base = rt
	}
}

// WithTimeout sets the per-request timeout for API calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
		c.refreshHTTP.Timeout = d
	}
}

// WithCartPath sets the file backing the anonymous cart.
func WithCartPath(path string) Option {
	return func(c *Client) {
		c.localCart = NewLocalCart(path)
	}
}

// Client talks to a PandaMall API server. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL   string
	session   *Session
	transport *Transport
	localCart *LocalCart

	// http carries the bearer token and the refresh-and-replay logic.
	// refreshHTTP shares the cookie jar but bypasses the transport so a
	// refresh cannot recursively trigger itself.
	http        *http.Client
	refreshHTTP *http.Client
}

// New creates a Client for the API at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: NewSession(),
	}
	c.refreshHTTP = &http.Client{Jar: jar, Timeout: 30 * time.Second}
	c.transport = &Transport{
		Session:     c.session,
		RefreshFunc: c.refreshToken,
	}
	c.http = &http.Client{
		Jar:       jar,
		Timeout:   30 * time.Second,
		Transport: c.transport,
	}

	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Session exposes the client's session state.
func (c *Client) Session() *Session {
	return c.session
}

// OnSessionExpired registers a callback fired when a refresh fails and
// the session is torn down.
func (c *Client) OnSessionExpired(fn func()) {
	c.transport.OnSessionExpired = fn
}

// refreshToken calls the refresh endpoint. The refresh credential lives
// in an httpOnly cookie held by the jar; nothing is sent explicitly.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.refreshHTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Token == "" {
		return "", fmt.Errorf("%w: malformed refresh response", ErrRefreshFailed)
	}
	return body.Token, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// do performs a JSON request and decodes the response into out (which
// may be nil for endpoints with empty bodies).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplayBody)).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}

// Login authenticates with username and password. On success the access
// token is installed on the session and the refresh cookie lands in the
// jar.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var out struct {
		Token string `json:"token"`
		User  *User `json:"user"`
	}
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		return nil, err
	}
	c.session.SetToken(out.Token)
	return out.User, nil
}

// Register creates an account and logs in as it.
func (c *Client) Register(ctx context.Context, username, password, email string) (*User, error) {
	var out struct {
		Token string `json:"token"`
		User  *User `json:"user"`
	}
	in := map[string]string{"username": username, "password": password, "email": email}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &out); err != nil {
		return nil, err
	}
	c.session.SetToken(out.Token)
	return out.User, nil
}

// Logout revokes the refresh credential server-side and clears the
// session. Local teardown happens even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.session.Clear()
	return err
}

// Profile fetches the authenticated user's record.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
