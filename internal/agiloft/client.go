// Package agiloft implements the authenticated Agiloft REST client and the
// entity-agnostic record operations built on top of it.
package agiloft

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

	"github.com/google/uuid"

	"github.com/bobmcallan/agiloft-mcp/internal/common"
	"github.com/bobmcallan/agiloft-mcp/internal/config"
)

// maxResponseSize caps response bodies to prevent OOM from unexpectedly
// large responses.
const maxResponseSize = 50 << 20 // 50MB

// refreshMargin is how early the token is refreshed before its expiry.
const refreshMargin = time.Minute

// defaultTokenLifetime applies when the login response omits expires_in.
const defaultTokenLifetime = 15 * time.Minute

// Client talks to the Agiloft REST API, exchanging credentials for a bearer
// token and transparently re-authenticating when it expires.
type Client struct {
	baseURL    string
	username   string
	password   string
	kb         string
	language   string
	httpClient *http.Client
	logger     *common.Logger

	// Token state, guarded by mu. The lock covers the freshness check and
	// the login call so concurrent callers never issue overlapping logins.
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewClient creates a client from the Agiloft connection settings.
func NewClient(cfg config.AgiloftConfig, logger *common.Logger) *Client {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		kb:       cfg.KB,
		language: lang,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}
}

// ensureAuthenticated refreshes the token when it is absent or within one
// minute of expiry. Callers arriving while another caller is mid-login block
// on the mutex and then observe the fresh token without re-authenticating.
func (c *Client) ensureAuthenticated(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt.Add(-refreshMargin)) {
		return nil
	}
	return c.authenticateLocked(ctx)
}

// forceAuthenticate discards the current token and logs in again. Used on
// the 401 retry path where the server has already rejected the token.
func (c *Client) forceAuthenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticateLocked(ctx)
}

// authenticateLocked performs the login exchange. Caller must hold mu.
func (c *Client) authenticateLocked(ctx context.Context) error {
	loginBody, err := json.Marshal(map[string]string{
		"login":    c.username,
		"password": c.password,
		"KB":       c.kb,
		"lang":     c.language,
	})
	if err != nil {
		return &AuthError{Message: fmt.Sprintf("failed to encode login request: %v", err)}
	}

	c.logger.Info().Str("kb", c.kb).Str("username", c.username).Msg("authenticating with Agiloft")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(loginBody))
	if err != nil {
		return &AuthError{Message: fmt.Sprintf("failed to build login request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Str("error", err.Error()).Msg("authentication request failed")
		return &AuthError{Message: fmt.Sprintf("authentication request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &AuthError{Message: fmt.Sprintf("failed to read login response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Str("kb", c.kb).Msg("authentication failed")
		return &AuthError{Message: fmt.Sprintf("authentication failed: %d - %s", resp.StatusCode, string(body))}
	}

	var login struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Result  struct {
			AccessToken  string  `json:"access_token"`
			RefreshToken string  `json:"refresh_token"`
			ExpiresIn    float64 `json:"expires_in"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		return &AuthError{Message: fmt.Sprintf("failed to parse login response: %v", err)}
	}
	if !login.Success {
		msg := login.Message
		if msg == "" {
			msg = "unknown error"
		}
		c.logger.Error().Str("kb", c.kb).Str("message", msg).Msg("authentication rejected")
		return &AuthError{Message: "authentication failed: " + msg}
	}

	c.accessToken = login.Result.AccessToken
	c.refreshToken = login.Result.RefreshToken
	lifetime := defaultTokenLifetime
	if login.Result.ExpiresIn > 0 {
		lifetime = time.Duration(login.Result.ExpiresIn * float64(time.Minute))
	}
	c.expiresAt = c.now().Add(lifetime)

	c.logger.Info().Str("expires_at", c.expiresAt.Format(time.RFC3339)).Msg("authentication successful")
	return nil
}

// token returns the current access token, failing when none is held.
func (c *Client) token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken == "" {
		return "", &AuthError{Message: "no access token available"}
	}
	return c.accessToken, nil
}

// request performs an authenticated call and returns the raw response body.
// A 401 triggers one forced re-authentication and a single retry; every
// other failure surfaces immediately as an APIError.
func (c *Client) request(ctx context.Context, method, path string, params url.Values, body []byte, contentType string) ([]byte, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}

	reqID := uuid.NewString()
	log := c.logger.WithCorrelationId(reqID)
	log.Debug().Str("method", method).Str("path", path).Msg("agiloft request")

	start := c.now()
	respBody, status, err := c.doOnce(ctx, method, path, params, body, contentType)
	if err != nil {
		log.Error().Str("method", method).Str("path", path).Str("error", err.Error()).Msg("agiloft request failed")
		return nil, &APIError{Message: fmt.Sprintf("request failed for %s %s: %v", method, path, err), Cause: err}
	}

	if status == http.StatusUnauthorized {
		log.Warn().Str("method", method).Str("path", path).Msg("received 401, re-authenticating")
		if err := c.forceAuthenticate(ctx); err != nil {
			return nil, err
		}
		respBody, status, err = c.doOnce(ctx, method, path, params, body, contentType)
		if err != nil {
			return nil, &APIError{Message: fmt.Sprintf("retry failed for %s %s: %v", method, path, err), Cause: err}
		}
		if status != http.StatusOK {
			log.Error().Int("status", status).Str("path", path).Msg("request failed after re-auth")
			return nil, &APIError{
				Message:    fmt.Sprintf("request failed after re-auth: %s %s", method, path),
				StatusCode: status,
				Body:       string(respBody),
			}
		}
	} else if status != http.StatusOK {
		log.Error().Int("status", status).Str("path", path).Msg("agiloft request failed")
		return nil, &APIError{
			Message:    fmt.Sprintf("request failed: %s %s", method, path),
			StatusCode: status,
			Body:       string(respBody),
		}
	}

	log.Debug().Int("status", status).Int64("duration_ms", c.now().Sub(start).Milliseconds()).Msg("agiloft response")
	return respBody, nil
}

// doOnce issues one HTTP request with the current token attached.
func (c *Client) doOnce(ctx context.Context, method, path string, params url.Values, body []byte, contentType string) ([]byte, int, error) {
	token, err := c.token()
	if err != nil {
		return nil, 0, err
	}

	if params == nil {
		params = url.Values{}
	}
	if params.Get("lang") == "" {
		params.Set("lang", c.language)
	}

	fullURL := c.baseURL + path + "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

// requestJSON performs a call with a JSON request body.
func (c *Client) requestJSON(ctx context.Context, method, path string, params url.Values, data any) ([]byte, error) {
	var body []byte
	contentType := ""
	if data != nil {
		var err error
		body, err = json.Marshal(data)
		if err != nil {
			return nil, &APIError{Message: fmt.Sprintf("failed to marshal request: %v", err), Cause: err}
		}
		contentType = "application/json"
	}
	return c.request(ctx, method, path, params, body, contentType)
}

// Logout invalidates the session server-side, best effort, and clears the
// token state either way.
func (c *Client) Logout(ctx context.Context) {
	c.mu.Lock()
	hasToken := c.accessToken != ""
	c.mu.Unlock()

	if hasToken {
		if _, err := c.requestJSON(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
			c.logger.Warn().Str("error", err.Error()).Msg("logout failed")
		} else {
			c.logger.Info().Msg("logged out")
		}
	}

	c.mu.Lock()
	c.accessToken = ""
	c.refreshToken = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}
