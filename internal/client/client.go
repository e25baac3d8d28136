package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Code       string            `json:"error"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("incidenthub: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("incidenthub: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	HTTPClient     *http.Client
	RefreshTimeout time.Duration
	OnSessionEnded func(cause error)
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithRefreshTimeout bounds each refresh exchange.
func WithRefreshTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.RefreshTimeout = timeout
	}
}

// WithOnSessionEnded registers a hook that runs when a failed refresh ends the session.
func WithOnSessionEnded(fn func(cause error)) ClientOption {
	return func(opts *ClientOptions) {
		opts.OnSessionEnded = fn
	}
}

// Client calls the REST API with the session's access token and transparently
// refreshes it once when the server answers 401.
type Client struct {
	baseURL     string
	http        *http.Client
	session     *SessionState
	coordinator *RefreshCoordinator
}

// NewClient creates a Client for the API served at baseURL.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTPClient,
		session: NewSessionState(),
	}
	c.coordinator = NewRefreshCoordinator(c.session, c.exchange, opts.RefreshTimeout)
	if opts.OnSessionEnded != nil {
		c.coordinator.OnSessionEnded(opts.OnSessionEnded)
	}
	return c
}

// Session returns the client's session state.
func (c *Client) Session() *SessionState {
	return c.session
}

// Coordinator returns the client's refresh coordinator.
func (c *Client) Coordinator() *RefreshCoordinator {
	return c.coordinator
}

// Login exchanges email and password for a session and stores its credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.startSession(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

// Register creates an account and stores the credentials of its first session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	return c.startSession(ctx, "/api/auth/register",
		map[string]string{"name": name, "email": email, "password": password})
}

// Logout revokes the refresh token and clears the session. It succeeds on an empty session.
func (c *Client) Logout(ctx context.Context) error {
	creds, ok := c.session.Current()
	if !ok {
		return nil
	}
	defer c.session.Clear()

	resp, err := c.send(ctx, http.MethodPost, "/api/auth/logout",
		mustJSON(map[string]string{"refreshToken": creds.RefreshToken}), "")
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// Do sends an authenticated request. body, when not nil, is encoded as JSON and out,
// when not nil, receives the decoded response. A 401 triggers one refresh and one retry.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	creds, ok := c.session.Current()
	if !ok {
		return ErrSessionEnded
	}

	resp, err := c.send(ctx, method, path, payload, creds.AccessToken)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return decodeResponse(resp, out)
	}
	drain(resp)

	fresh, err := c.coordinator.Refresh(ctx, creds.AccessToken)
	if err != nil {
		return err
	}

	resp, err = c.send(ctx, method, path, payload, fresh.AccessToken)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func (c *Client) startSession(ctx context.Context, path string, body any) (*Session, error) {
	resp, err := c.send(ctx, http.MethodPost, path, mustJSON(body), "")
	if err != nil {
		return nil, err
	}
	var session Session
	if err := decodeResponse(resp, &session); err != nil {
		return nil, err
	}
	c.session.Set(session.Credentials)
	return &session, nil
}

// exchange is the coordinator's refresh call.
func (c *Client) exchange(ctx context.Context, refreshToken string) (Credentials, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/refresh",
		mustJSON(map[string]string{"refreshToken": refreshToken}), "")
	if err != nil {
		return Credentials{}, err
	}
	var creds Credentials
	if err := decodeResponse(resp, &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeResponse(resp *http.Response, out any) error {
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
