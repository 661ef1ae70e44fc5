package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mkravchenko/sessiongate/internal/logger"
)

// Error codes assigned by the client
const (
	CodeRejected    = "rejected"     // identity API answered with non-2xx status
	CodeBadResponse = "bad-response" // 2xx but the body misses required fields or is not JSON
	CodeTransport   = "transport"    // request could not be sent or timed out
)

const defaultRequestTimeout = 10 * time.Second

// APIError describes a failed exchange with the identity API
type APIError struct {
	Code   string
	Status int
	Err    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity api: code: %s, status: %d, error: %v", e.Code, e.Status, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func newAPIError(code string, status int, err error) *APIError {
	return &APIError{Code: code, Status: status, Err: err}
}

// TokenResponse is the token issuing response of login and refresh endpoints
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"` // seconds, 0 if API omits it
}

// Profile is the authenticated principal as the identity API reports it
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Client talks JSON-over-HTTP to the identity API
type Client struct {
	BaseURL string

	timeout time.Duration
	client  *http.Client
	logger  logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, l logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Client{
		BaseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{},
		logger:  l,
	}
}

// Login exchanges raw credentials for a token pair
func (c *Client) Login(ctx context.Context, email string, password string) (TokenResponse, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	return c.exchangeTokens(ctx, "/auth/login", body)
}

// Refresh exchanges a refresh token for a fresh token pair
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	return c.exchangeTokens(ctx, "/auth/refresh", body)
}

// Me resolves the principal profile the access token belongs to
func (c *Client) Me(ctx context.Context, accessToken string) (Profile, error) {
	var profile Profile

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/me", nil)
	if err != nil {
		return profile, newAPIError(CodeTransport, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return profile, newAPIError(CodeTransport, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	if !successful(resp) {
		c.logger.Warn("Profile request rejected", "status_code", resp.StatusCode)
		return profile, newAPIError(CodeRejected, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		c.logger.Warn("Failed to decode profile response", "error", err)
		return profile, newAPIError(CodeBadResponse, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if profile.ID == "" || profile.Email == "" {
		return profile, newAPIError(CodeBadResponse, resp.StatusCode, fmt.Errorf("profile misses required fields"))
	}

	return profile, nil
}

// exchangeTokens posts the body to a token issuing endpoint and decodes the pair
func (c *Client) exchangeTokens(ctx context.Context, path string, body any) (TokenResponse, error) {
	var tokens TokenResponse

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return tokens, newAPIError(CodeTransport, 0, fmt.Errorf("failed to encode request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, buf)
	if err != nil {
		return tokens, newAPIError(CodeTransport, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return tokens, newAPIError(CodeTransport, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	if !successful(resp) {
		c.logger.Warn("Token request rejected", "path", path, "status_code", resp.StatusCode)
		return tokens, newAPIError(CodeRejected, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		c.logger.Warn("Failed to decode token response", "path", path, "error", err)
		return tokens, newAPIError(CodeBadResponse, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if tokens.AccessToken == "" {
		return tokens, newAPIError(CodeBadResponse, resp.StatusCode, fmt.Errorf("response misses access token"))
	}

	return tokens, nil
}

func successful(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
