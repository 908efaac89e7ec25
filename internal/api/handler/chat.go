package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/agent-relay/internal/api/response"
	"github.com/Rrens/agent-relay/internal/domain"
	"github.com/Rrens/agent-relay/internal/service"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ChatHandler handles the message relay endpoint
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Relay handles POST /api/v1/chat. The reply is always the relay envelope;
// callers branch on its success flag, not the HTTP status.
func (h *ChatHandler) Relay(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result := h.chatService.Relay(r.Context(), req)
	response.Raw(w, http.StatusOK, result)
}
