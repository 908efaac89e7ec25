package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/Rrens/agent-relay/internal/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// userKeyPrefix namespaces caller identities before they reach the backend.
	userKeyPrefix = "tg_"

	sessionNotFoundMarker = "session not found"
)

// TurnRequest carries one user message into SubmitTurn
type TurnRequest struct {
	Text      string
	UserID    string
	UserName  string
	SessionID string
}

// TurnResult is the outcome of one turn. Failures are carried in Error, never
// returned as a Go error; callers branch on Success alone.
type TurnResult struct {
	Success    bool
	Response   string
	SessionID  string
	UserKey    string
	NewSession bool
	Error      string
}

// Client talks to the agent backend over its two HTTP operations
type Client struct {
	baseURL   string
	appName   string
	client    *http.Client
	probeOnce sync.Once
}

// NewClient creates a new agent backend client
func NewClient(cfg config.AgentConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appName: cfg.AppName,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// AppName returns the configured application namespace
func (c *Client) AppName() string {
	return c.appName
}

// UserKey normalizes a raw caller identifier into the namespaced key used to
// address the backend. With no identifier it synthesizes a throwaway per-call
// key, which is never a session identifier and never reused.
func (c *Client) UserKey(rawUserID string) string {
	if rawUserID == "" {
		return userKeyPrefix + "anon_" + uuid.New().String()
	}
	if strings.HasPrefix(rawUserID, userKeyPrefix) {
		return rawUserID
	}
	return userKeyPrefix + rawUserID
}

// CreateSession asks the backend to mint a session for the given user
func (c *Client) CreateSession(ctx context.Context, rawUserID string) (string, error) {
	userKey := c.UserKey(rawUserID)
	url := fmt.Sprintf("%s/apps/%s/users/%s/sessions", c.baseURL, c.appName, userKey)

	body, status, err := c.post(ctx, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionCreate, err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: %w", ErrSessionCreate,
			&remoteError{cause: errors.New("session creation rejected"), status: status, body: strings.TrimSpace(string(body))})
	}

	var resp createSessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %w", ErrSessionCreate, err)
	}

	// The backend has answered with either field name depending on version.
	sessionID := resp.SessionID
	if sessionID == "" {
		sessionID = resp.ID
	}
	if sessionID == "" {
		return "", fmt.Errorf("%w: response carried no session id", ErrSessionCreate)
	}

	log.Debug().
		Str("user_key", userKey).
		Str("session_id", sessionID).
		Msg("agent session created")

	return sessionID, nil
}

// SubmitTurn relays one user message. Session strategy: reuse the candidate id
// when it is well formed, otherwise mint a new session first. If the backend
// then rejects the session as unknown, exactly one recovery happens — mint
// again, resubmit the identical payload with the replaced id.
func (c *Client) SubmitTurn(ctx context.Context, req TurnRequest) TurnResult {
	c.probeOnce.Do(func() { c.probe(ctx) })

	userKey := c.UserKey(req.UserID)

	sessionID := req.SessionID
	newSession := false
	if !IsReusableSessionID(sessionID) {
		created, err := c.CreateSession(ctx, userKey)
		if err != nil {
			return failedTurn(err)
		}
		sessionID = created
		newSession = true
	}

	payload := c.buildRunRequest(userKey, sessionID, req)

	raw, err := c.run(ctx, payload)
	if errors.Is(err, ErrSessionNotFound) {
		// The session died on the backend side. Recover once: fresh session,
		// same payload, one resubmission.
		created, createErr := c.CreateSession(ctx, userKey)
		if createErr != nil {
			return failedTurn(createErr)
		}
		sessionID = created
		newSession = true
		payload.SessionID = sessionID
		payload.StateDelta.SessionMetadata.SessionID = sessionID

		log.Info().
			Str("session_id", sessionID).
			Msg("agent session expired, retrying with fresh session")

		raw, err = c.run(ctx, payload)
	}
	if err != nil {
		return failedTurn(err)
	}

	return TurnResult{
		Success:    true,
		Response:   ExtractText(raw),
		SessionID:  sessionID,
		UserKey:    userKey,
		NewSession: newSession,
	}
}

// buildRunRequest is shared by the fresh and recovered attempts so the two
// payloads differ only in the session identifier.
func (c *Client) buildRunRequest(userKey, sessionID string, req TurnRequest) runRequest {
	return runRequest{
		AppName:   c.appName,
		UserID:    userKey,
		SessionID: sessionID,
		NewMessage: runMessage{
			Role:  "user",
			Parts: []runPart{{Text: req.Text}},
		},
		Streaming: false,
		StateDelta: runStateData{
			SessionMetadata: sessionMetadata{
				SessionID: sessionID,
				UserKey:   userKey,
				ChatID:    req.UserID,
				UserName:  req.UserName,
			},
		},
	}
}

// run submits the turn and returns the raw reply for normalization
func (c *Client) run(ctx context.Context, payload runRequest) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal turn request: %w", err)
	}

	respBody, status, err := c.post(ctx, c.baseURL+"/run", body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		detail := remoteDetail(respBody)
		if status == http.StatusNotFound && strings.Contains(strings.ToLower(detail), sessionNotFoundMarker) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, detail)
		}
		return nil, &remoteError{
			cause:  errors.New("turn submission rejected"),
			status: status,
			body:   strings.TrimSpace(string(respBody)),
		}
	}

	return json.RawMessage(respBody), nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// probe checks backend reachability once per process. Informational only: a
// failure is logged and the turn proceeds regardless.
func (c *Client) probe(ctx context.Context) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/list-apps", nil)
	if err != nil {
		return
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		log.Warn().Err(err).Str("base_url", c.baseURL).Msg("agent backend connectivity probe failed")
		return
	}
	defer resp.Body.Close()

	log.Info().
		Str("base_url", c.baseURL).
		Int("status", resp.StatusCode).
		Msg("agent backend reachable")
}

func remoteDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return eb.Detail
	}
	return strings.TrimSpace(string(body))
}

func failedTurn(err error) TurnResult {
	return TurnResult{
		Success: false,
		Error:   err.Error(),
	}
}
