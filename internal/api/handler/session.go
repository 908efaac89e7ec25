package handler

import (
	"errors"
	"net/http"

	"github.com/Rrens/agent-relay/internal/api/response"
	"github.com/Rrens/agent-relay/internal/domain"
	"github.com/Rrens/agent-relay/internal/service"
	"github.com/go-chi/chi/v5"
)

// SessionHandler handles session admin endpoints
type SessionHandler struct {
	chatService *service.ChatService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chatService *service.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

// Transcript handles GET /api/v1/sessions/{sessionID}/messages
func (h *SessionHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatService.GetTranscript(r.Context(), sessionID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, messages)
}

// Delete handles DELETE /api/v1/sessions/{sessionID}. The bound lead, if any,
// is tombstoned along with the session.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatService.DeleteSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.NoContent(w)
}
