// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalapi

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

	"github.com/caminho-app/caminho/lib/netutil"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the root of the portal API (e.g., "https://api.caminho.pt/api").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Tokens persists the bearer token between requests. If nil, an
	// in-memory store is used (the token dies with the process).
	Tokens TokenStore
	// OnAuthFailure, if set, is invoked once per 401 response after the
	// token store has been cleared. The CLI uses it to tell the user to
	// log in again.
	OnAuthFailure func()
}

// Client is the unauthenticated entry point to the portal API.
// It holds the base URL, HTTP transport, and token store, shared by
// every Session derived from it.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	logger        *slog.Logger
	tokens        TokenStore
	onAuthFailure func()
}

// NewClient creates a new portal API client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("portalapi: BaseURL is required")
	}

	// Validate the URL structure. We store the string form (with
	// trailing slash stripped) and build request URLs by direct
	// concatenation, which avoids double-encoding surprises from
	// url.URL.String().
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("portalapi: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens := config.Tokens
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}

	return &Client{
		baseURL:       strings.TrimRight(config.BaseURL, "/"),
		httpClient:    httpClient,
		logger:        logger,
		tokens:        tokens,
		onAuthFailure: config.OnAuthFailure,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption to
// force fresh TCP connections instead of reusing a poisoned pooled
// connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Login authenticates with email and password. On success the bearer
// token is written to the token store and a Session for the account is
// returned.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" {
		return nil, fmt.Errorf("portalapi: email is required for login")
	}
	if password == "" {
		return nil, fmt.Errorf("portalapi: password is required for login")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/login", false, loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("portalapi: login failed: %w", err)
	}

	var auth AuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse login response: %w", err)
	}

	if err := c.tokens.SetToken(auth.Token); err != nil {
		return nil, fmt.Errorf("portalapi: storing token: %w", err)
	}

	c.logger.Info("logged in to portal",
		"user_id", auth.User.ID,
		"role", auth.User.Role,
	)

	return &Session{client: c, user: auth.User}, nil
}

// Register creates a new client account. Like Login, the returned
// token is written to the token store so the caller is immediately
// authenticated.
func (c *Client) Register(ctx context.Context, request RegisterRequest) (*Session, error) {
	if request.Email == "" {
		return nil, fmt.Errorf("portalapi: email is required for registration")
	}
	if request.Password == "" {
		return nil, fmt.Errorf("portalapi: password is required for registration")
	}
	if request.Password != request.PasswordConfirmation {
		return nil, fmt.Errorf("portalapi: password confirmation does not match")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/register", false, request)
	if err != nil {
		return nil, fmt.Errorf("portalapi: registration failed: %w", err)
	}

	var auth AuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse register response: %w", err)
	}

	if err := c.tokens.SetToken(auth.Token); err != nil {
		return nil, fmt.Errorf("portalapi: storing token: %w", err)
	}

	c.logger.Info("registered portal account",
		"user_id", auth.User.ID,
	)

	return &Session{client: c, user: auth.User}, nil
}

// Resume rebuilds a Session from the token already in the token store,
// validating it against GET /me. Returns an auth error if the store is
// empty or the token has expired server-side.
func (c *Client) Resume(ctx context.Context) (*Session, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("portalapi: reading token: %w", err)
	}
	if token == "" {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "not logged in"}
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/me", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: resume failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse user response: %w", err)
	}

	return &Session{client: c, user: user}, nil
}

// SubmitContact sends a public contact-form submission. No
// authentication is required.
func (c *Client) SubmitContact(ctx context.Context, request ContactRequest) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/contact", false, request); err != nil {
		return fmt.Errorf("portalapi: contact submission failed: %w", err)
	}
	return nil
}

// RequestPasswordReset asks the back office to reset the account's
// password. The backend has no dedicated reset endpoint; the request
// rides the contact endpoint tagged with type "password_reset" and a
// conventional message body that the back office recognizes.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("portalapi: email is required for password reset")
	}
	request := ContactRequest{
		Email:   email,
		Type:    "password_reset",
		Message: "Password reset request for: " + email,
	}
	if _, err := c.doRequest(ctx, http.MethodPost, "/contact", false, request); err != nil {
		return fmt.Errorf("portalapi: password reset request failed: %w", err)
	}
	return nil
}

// doRequest performs a JSON request against the portal and returns the
// response body. On 2xx, returns the body. On 4xx/5xx, returns a
// *APIError alongside the raw body. A 401 on an authenticated request
// additionally clears the token store and fires the auth-failure hook
// before returning.
func (c *Client) doRequest(ctx context.Context, method, path string, authenticated bool, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("portalapi: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("portalapi: failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		if err := c.attachToken(request); err != nil {
			return nil, err
		}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("portalapi: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("portalapi: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return responseBody, c.errorFromResponse(method, path, response.StatusCode, responseBody)
}

// doRequestRaw performs an authenticated request with a raw body (for
// multipart document upload).
func (c *Client) doRequestRaw(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("portalapi: failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if err := c.attachToken(request); err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("portalapi: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("portalapi: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return nil, c.errorFromResponse(method, path, response.StatusCode, responseBody)
}

// doRequestStream performs an authenticated GET and hands the response
// body to the caller for streaming (document download). The caller
// must close the returned body. Error responses are fully read and
// converted; the body is never returned for non-2xx statuses.
func (c *Client) doRequestStream(ctx context.Context, path string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: failed to create request: %w", err)
	}
	if err := c.attachToken(request); err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("portalapi: request to GET %s failed: %w", path, err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return response.Body, nil
	}

	defer response.Body.Close()
	responseBody := netutil.ErrorBody(response.Body)
	return nil, c.errorFromResponse(http.MethodGet, path, response.StatusCode, []byte(responseBody))
}

func (c *Client) attachToken(request *http.Request) error {
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("portalapi: reading token: %w", err)
	}
	if token == "" {
		return &APIError{StatusCode: http.StatusUnauthorized, Message: "not logged in"}
	}
	request.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// errorFromResponse converts a non-2xx response into a *APIError. On
// 401 the stored token is evicted and the auth-failure hook fires:
// every consumer of the shared token store is logged out at once, not
// just the failing call.
func (c *Client) errorFromResponse(method, path string, statusCode int, body []byte) error {
	if statusCode == http.StatusUnauthorized {
		if err := c.tokens.Clear(); err != nil {
			c.logger.Warn("failed to clear token store after 401", "error", err)
		}
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
	}

	var apiErr APIError
	if jsonErr := json.Unmarshal(body, &apiErr); jsonErr != nil || apiErr.Message == "" {
		// Server returned non-JSON or an unexpected shape. Fail loud
		// with the raw body rather than a blank message.
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("unexpected %d response from %s %s", statusCode, method, path)
		}
	}
	apiErr.StatusCode = statusCode
	return &apiErr
}
