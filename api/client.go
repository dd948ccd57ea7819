// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/visamark/visamark/lib/netutil"
)

// DefaultBaseURL is the local-development API endpoint.
const DefaultBaseURL = "http://localhost:5555/api/v1"

// defaultTimeout bounds every request when the caller supplies no
// HTTP client of their own. Matches the platform's documented client
// timeout.
const defaultTimeout = 30 * time.Second

// maxRawErrorBody caps how much of a non-JSON error body is carried
// into the error message.
const maxRawErrorBody = 200

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the base URL of the platform API
	// (e.g., "http://localhost:5555/api/v1").
	BaseURL string
	// HTTPClient is used for all requests. If nil, a client with a
	// 30-second timeout is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is an unauthenticated platform client. It holds the API base
// URL and HTTP transport, shared across Sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new unauthenticated platform client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}

	// Validate the URL structure. The string form (with trailing slash
	// stripped) is stored and request URLs are built by direct
	// concatenation.
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login authenticates with email and password, returning a Session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" {
		return nil, fmt.Errorf("api: email is required for login")
	}
	if password == "" {
		return nil, fmt.Errorf("api: password is required for login")
	}

	body, err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("api: login failed: %w", err)
	}

	var auth authData
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, fmt.Errorf("api: failed to parse login response: %w", err)
	}

	c.logger.Info("logged in",
		"user_id", auth.User.ID,
		"email", auth.User.Email,
		"role", auth.User.Role,
	)

	return c.sessionFromAuth(&auth), nil
}

// Register creates a new account and returns an authenticated Session
// for it.
func (c *Client) Register(ctx context.Context, request RegisterRequest) (*Session, error) {
	if request.Email == "" {
		return nil, fmt.Errorf("api: email is required for registration")
	}
	if request.Password == "" {
		return nil, fmt.Errorf("api: password is required for registration")
	}

	body, err := c.do(ctx, http.MethodPost, "/auth/register", "", request)
	if err != nil {
		return nil, fmt.Errorf("api: registration failed: %w", err)
	}

	var auth authData
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, fmt.Errorf("api: failed to parse register response: %w", err)
	}

	c.logger.Info("registered account",
		"user_id", auth.User.ID,
		"email", auth.User.Email,
	)

	return c.sessionFromAuth(&auth), nil
}

// Refresh exchanges a refresh credential for a fresh token pair. Both
// credentials are rotated: the returned pair replaces the stored pair
// atomically in the caller.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, fmt.Errorf("api: refresh token is required")
	}

	body, err := c.do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refreshToken": refreshToken,
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("api: token refresh failed: %w", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(body, &pair); err != nil {
		return TokenPair{}, fmt.Errorf("api: failed to parse refresh response: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return TokenPair{}, fmt.Errorf("api: refresh response missing credentials")
	}
	return pair, nil
}

// SessionFromCredentials creates a Session from previously persisted
// credentials. This does NOT validate the credentials — call
// Session.WhoAmI to check whether they are still accepted.
func (c *Client) SessionFromCredentials(identity User, pair TokenPair) *Session {
	return &Session{
		client:       c,
		identity:     identity,
		accessToken:  pair.AccessToken,
		refreshToken: pair.RefreshToken,
	}
}

func (c *Client) sessionFromAuth(auth *authData) *Session {
	return &Session{
		client:       c,
		identity:     auth.User,
		accessToken:  auth.AccessToken,
		refreshToken: auth.RefreshToken,
	}
}

// do performs an HTTP request against the platform API and returns the
// normalized payload (the envelope's data field). On 2xx the envelope
// is unwrapped; on 4xx/5xx a *Error is returned. accessToken may be
// empty for unauthenticated endpoints. query may be omitted for
// endpoints without query parameters.
func (c *Client) do(ctx context.Context, method, path, accessToken string, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("api: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: failed to create request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		request.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.send(request, method, path)
}

// doMultipart performs a multipart/form-data request (document upload).
// contentType must carry the multipart boundary.
func (c *Client) doMultipart(ctx context.Context, method, path, accessToken, contentType string, body io.Reader) ([]byte, error) {
	requestURL := c.baseURL + path

	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("api: failed to create request: %w", err)
	}

	request.Header.Set("Content-Type", contentType)
	if accessToken != "" {
		request.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.send(request, method, path)
}

// send executes a prepared request and unwraps the response envelope.
func (c *Client) send(request *http.Request, method, path string) ([]byte, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("api: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("api: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		var env envelope
		if err := json.Unmarshal(responseBody, &env); err != nil {
			return nil, fmt.Errorf("api: failed to parse response envelope from %s %s: %w", method, path, err)
		}
		return env.Data, nil
	}

	// All platform error responses use the same envelope shape.
	var env envelope
	if jsonErr := json.Unmarshal(responseBody, &env); jsonErr != nil {
		// Non-JSON error body: a proxy or load balancer answered in the
		// server's place. Still a structured error, so status-driven
		// handling (the refresh protocol included) sees the code.
		message := strings.TrimSpace(string(responseBody))
		if len(message) > maxRawErrorBody {
			message = message[:maxRawErrorBody]
		}
		return nil, &Error{
			StatusCode: response.StatusCode,
			Message:    message,
		}
	}

	return nil, &Error{
		StatusCode: response.StatusCode,
		Message:    env.Message,
		Fields:     env.Errors,
	}
}
