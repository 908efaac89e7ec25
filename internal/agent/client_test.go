package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Rrens/agent-relay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSessionID = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"

type fakeBackend struct {
	srv *httptest.Server

	createCalls atomic.Int64
	runCalls    atomic.Int64

	// mintedID is returned by every session creation
	mintedID string
	// runHandler decides each /run reply in call order
	runHandler func(attempt int64, w http.ResponseWriter, req runRequest)
	// lastRun holds the most recent /run payload
	lastRun atomic.Value
}

func newFakeBackend(t *testing.T) *fakeBackend {
	f := &fakeBackend{mintedID: "b2c3d4e5-f6a7-4b8c-9d0e-1f2a3b4c5d6e"}

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/list-apps":
			w.Write([]byte(`["telegram-assistant"]`))
		case strings.HasPrefix(r.URL.Path, "/apps/"):
			f.createCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"session_id": f.mintedID})
		case r.URL.Path == "/run":
			attempt := f.runCalls.Add(1)
			var req runRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.lastRun.Store(req)
			f.runHandler(attempt, w, req)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeBackend) client() *Client {
	return NewClient(config.AgentConfig{
		BaseURL: f.srv.URL,
		AppName: "telegram-assistant",
		Timeout: 5 * time.Second,
	})
}

func okReply(w http.ResponseWriter, text string) {
	w.Write([]byte(`[{"content":{"parts":[{"text":"` + text + `"}],"role":"model"}}]`))
}

func TestSubmitTurnReusesValidSession(t *testing.T) {
	backend := newFakeBackend(t)
	backend.runHandler = func(_ int64, w http.ResponseWriter, _ runRequest) {
		okReply(w, "Hi there")
	}

	result := backend.client().SubmitTurn(context.Background(), TurnRequest{
		Text:      "hello",
		UserID:    "12345",
		UserName:  "Maya",
		SessionID: validSessionID,
	})

	assert.True(t, result.Success)
	assert.Equal(t, "Hi there", result.Response)
	assert.Equal(t, validSessionID, result.SessionID)
	assert.False(t, result.NewSession)
	assert.Equal(t, int64(0), backend.createCalls.Load())
	assert.Equal(t, int64(1), backend.runCalls.Load())

	sent := backend.lastRun.Load().(runRequest)
	assert.Equal(t, validSessionID, sent.SessionID)
	assert.Equal(t, "tg_12345", sent.UserID)
	assert.Equal(t, "user", sent.NewMessage.Role)
	assert.Equal(t, "hello", sent.NewMessage.Parts[0].Text)
	assert.False(t, sent.Streaming)
	assert.Equal(t, validSessionID, sent.StateDelta.SessionMetadata.SessionID)
	assert.Equal(t, "12345", sent.StateDelta.SessionMetadata.ChatID)
	assert.Equal(t, "Maya", sent.StateDelta.SessionMetadata.UserName)
}

func TestSubmitTurnCreatesSessionWhenMissing(t *testing.T) {
	backend := newFakeBackend(t)
	backend.runHandler = func(_ int64, w http.ResponseWriter, _ runRequest) {
		okReply(w, "fresh")
	}

	result := backend.client().SubmitTurn(context.Background(), TurnRequest{
		Text:   "hello",
		UserID: "12345",
	})

	assert.True(t, result.Success)
	assert.True(t, result.NewSession)
	assert.Equal(t, backend.mintedID, result.SessionID)
	assert.Equal(t, int64(1), backend.createCalls.Load())
	assert.Equal(t, int64(1), backend.runCalls.Load())
}

func TestSubmitTurnRejectsMalformedCandidate(t *testing.T) {
	backend := newFakeBackend(t)
	backend.runHandler = func(_ int64, w http.ResponseWriter, _ runRequest) {
		okReply(w, "ok")
	}

	result := backend.client().SubmitTurn(context.Background(), TurnRequest{
		Text:      "hello",
		UserID:    "12345",
		SessionID: "not-a-session",
	})

	assert.True(t, result.Success)
	assert.True(t, result.NewSession)
	assert.Equal(t, backend.mintedID, result.SessionID)
	assert.Equal(t, int64(1), backend.createCalls.Load())
}

func TestSubmitTurnRecoversExpiredSessionOnce(t *testing.T) {
	backend := newFakeBackend(t)
	backend.runHandler = func(attempt int64, w http.ResponseWriter, req runRequest) {
		if attempt == 1 {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Session not found: " + req.SessionID})
			return
		}
		okReply(w, "recovered")
	}

	result := backend.client().SubmitTurn(context.Background(), TurnRequest{
		Text:      "hello",
		UserID:    "12345",
		SessionID: validSessionID,
	})

	assert.True(t, result.Success)
	assert.Equal(t, "recovered", result.Response)
	assert.True(t, result.NewSession)
	assert.Equal(t, backend.mintedID, result.SessionID)
	assert.Equal(t, int64(1), backend.createCalls.Load())
	assert.Equal(t, int64(2), backend.runCalls.Load())

	// The resubmitted payload carries the replaced id, nothing else changed
	sent := backend.lastRun.Load().(runRequest)
	assert.Equal(t, backend.mintedID, sent.SessionID)
	assert.Equal(t, backend.mintedID, sent.StateDelta.SessionMetadata.SessionID)
	assert.Equal(t, "hello", sent.NewMessage.Parts[0].Text)
}

func TestSubmitTurnRecoveryAfterInitialCreation(t *testing.T) {
	backend := newFakeBackend(t)
	backend.runHandler = func(attempt int64, w http.ResponseWriter, _ runRequest) {
		if attempt == 1 {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Session not found"})
			return
		}
		okReply(w, "second time lucky")
	}

	result := backend.client().SubmitTurn(context.Background(), TurnRequest{
		Text:   "hello",
		UserID: "12345",
	})

	// Two creations and two submissions in total: one initial, one recovery
	assert.True(t, result.Success)
	assert.Equal(t, int64(2), backend.createCalls.Load())
	assert.Equal(t, int64(2), backend.runCalls.Load())
}

func TestSubmitTurnDoesNotRecoverServerErrors(t *testing.T) {
	backend := newFakeBackend(t)
	backend.runHandler = func(_ int64, w http.ResponseWriter, _ runRequest) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"model overloaded"}`))
	}

	result := backend.client().SubmitTurn(context.Background(), TurnRequest{
		Text:      "hello",
		UserID:    "12345",
		SessionID: validSessionID,
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "500")
	assert.Contains(t, result.Error, "model overloaded")
	assert.Equal(t, int64(0), backend.createCalls.Load())
	assert.Equal(t, int64(1), backend.runCalls.Load())
}

func TestSubmitTurnDoesNotRecoverPlain404(t *testing.T) {
	backend := newFakeBackend(t)
	backend.runHandler = func(_ int64, w http.ResponseWriter, _ runRequest) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"App not found"}`))
	}

	result := backend.client().SubmitTurn(context.Background(), TurnRequest{
		Text:      "hello",
		UserID:    "12345",
		SessionID: validSessionID,
	})

	assert.False(t, result.Success)
	assert.Equal(t, int64(0), backend.createCalls.Load())
	assert.Equal(t, int64(1), backend.runCalls.Load())
}

func TestSubmitTurnFailsWhenSessionCreationFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/apps/") {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(config.AgentConfig{BaseURL: srv.URL, AppName: "telegram-assistant", Timeout: 5 * time.Second})

	result := client.SubmitTurn(context.Background(), TurnRequest{Text: "hello", UserID: "12345"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "failed to create agent session")
}

func TestCreateSession(t *testing.T) {
	t.Run("session_id field", func(t *testing.T) {
		backend := newFakeBackend(t)
		id, err := backend.client().CreateSession(context.Background(), "12345")
		require.NoError(t, err)
		assert.Equal(t, backend.mintedID, id)
	})

	t.Run("id field fallback", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"id": validSessionID})
		}))
		defer srv.Close()

		client := NewClient(config.AgentConfig{BaseURL: srv.URL, AppName: "telegram-assistant", Timeout: 5 * time.Second})
		id, err := client.CreateSession(context.Background(), "12345")
		require.NoError(t, err)
		assert.Equal(t, validSessionID, id)
	})

	t.Run("empty response body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient(config.AgentConfig{BaseURL: srv.URL, AppName: "telegram-assistant", Timeout: 5 * time.Second})
		_, err := client.CreateSession(context.Background(), "12345")
		assert.ErrorIs(t, err, ErrSessionCreate)
	})
}

func TestUserKey(t *testing.T) {
	client := NewClient(config.AgentConfig{BaseURL: "http://localhost:8000", AppName: "telegram-assistant", Timeout: time.Second})

	assert.Equal(t, "tg_12345", client.UserKey("12345"))
	assert.Equal(t, "tg_12345", client.UserKey("tg_12345"))

	// Fallback keys are unique per call and never look like session ids
	first := client.UserKey("")
	second := client.UserKey("")
	assert.True(t, strings.HasPrefix(first, "tg_anon_"))
	assert.NotEqual(t, first, second)
	assert.False(t, IsReusableSessionID(first))
}
