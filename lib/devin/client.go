// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package devin

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

	"github.com/issuepilot/issuepilot/lib/clock"
)

// defaultBaseURL is the base URL for the Devin API.
const defaultBaseURL = "https://api.devin.ai/v1"

// sessionAppURL is the web UI root for session links shown to users.
const sessionAppURL = "https://app.devin.ai/sessions/"

// maxResponseSize bounds response body reads.
const maxResponseSize int64 = 32 << 20

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the API root. Defaults to "https://api.devin.ai/v1".
	BaseURL string

	// APIKey is the bearer token. Required.
	APIKey string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock provides time operations for the polling loop. Defaults
	// to clock.Real(). Inject clock.Fake() in tests.
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Client is a Devin API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	clock      clock.Clock
	logger     *slog.Logger
}

// NewClient creates a Devin API client from the given configuration.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("devin: no API key configured")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		httpClient: httpClient,
		clock:      clk,
		logger:     logger,
	}, nil
}

// SessionURL returns the web UI link for a session. The UI drops the
// "devin-" id prefix that the API includes.
func SessionURL(sessionID string) string {
	return sessionAppURL + strings.TrimPrefix(sessionID, "devin-")
}

// CreateSession creates a remote session from a prompt. The returned
// session id is extracted from the creation response (top-level id,
// session_id, sessionId, then data.id); its absence is a hard error
// wrapping [ErrNoSessionID].
func (client *Client) CreateSession(ctx context.Context, prompt string, metadata map[string]any) (string, Session, error) {
	payload := map[string]any{
		"prompt":   prompt,
		"metadata": metadata,
	}

	var session Session
	if err := client.do(ctx, http.MethodPost, "/sessions", payload, &session); err != nil {
		return "", nil, err
	}

	sessionID := extractSessionID(session)
	if sessionID == "" {
		client.logger.Error("no session ID in creation response", "keys", sessionKeys(session))
		return "", nil, fmt.Errorf("%w (response keys: %v)", ErrNoSessionID, sessionKeys(session))
	}

	client.logger.Info("created session", "session_id", sessionID)
	return sessionID, session, nil
}

// GetSession fetches the current status payload of a session.
func (client *Client) GetSession(ctx context.Context, sessionID string) (Session, error) {
	var session Session
	path := "/sessions/" + url.PathEscape(sessionID)
	if err := client.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, fmt.Errorf("getting session %s: %w", sessionID, err)
	}
	return session, nil
}

// getSessionRaw fetches the session with its message and thinking feed
// included. Used by GetSessionDetail.
func (client *Client) getSessionRaw(ctx context.Context, sessionID string) (Session, error) {
	var session Session
	path := "/sessions/" + url.PathEscape(sessionID) + "?include_messages=true&include_thinking=true"
	if err := client.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, fmt.Errorf("getting session detail %s: %w", sessionID, err)
	}
	return session, nil
}

// do executes an authenticated request. On non-2xx responses the
// returned error is an *APIError.
func (client *Client) do(ctx context.Context, method, path string, requestBody any, result any) error {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("devin: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("devin: creating request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+client.apiKey)
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("devin: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("devin: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return parseAPIError(response.StatusCode, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("devin: decoding response: %w", err)
		}
	}
	return nil
}

// parseAPIError parses an error response. The Devin API sometimes
// wraps errors as {"error":{"message":...}} and sometimes returns a
// bare {"message":...} or plain text.
func parseAPIError(statusCode int, body []byte) *APIError {
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &wrapped) == nil {
		if wrapped.Error.Message != "" {
			return &APIError{StatusCode: statusCode, Message: wrapped.Error.Message}
		}
		if wrapped.Message != "" {
			return &APIError{StatusCode: statusCode, Message: wrapped.Message}
		}
	}
	return &APIError{StatusCode: statusCode, Message: string(body)}
}

// sessionKeys lists a payload's top-level keys for diagnostics without
// echoing the payload itself.
func sessionKeys(session Session) []string {
	keys := make([]string, 0, len(session))
	for key := range session {
		keys = append(keys, key)
	}
	return keys
}
