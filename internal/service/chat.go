package service

import (
	"context"
	"time"

	"github.com/Rrens/agent-relay/internal/agent"
	"github.com/Rrens/agent-relay/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AgentClient is the slice of the agent backend client the relay needs
type AgentClient interface {
	SubmitTurn(ctx context.Context, req agent.TurnRequest) agent.TurnResult
}

// ChatService relays user messages to the agent backend and keeps the local
// session and transcript records current.
type ChatService struct {
	agent       AgentClient
	sessionRepo domain.SessionRepository
	messageRepo domain.MessageRepository
}

// NewChatService creates a new chat service
func NewChatService(
	agentClient AgentClient,
	sessionRepo domain.SessionRepository,
	messageRepo domain.MessageRepository,
) *ChatService {
	return &ChatService{
		agent:       agentClient,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
	}
}

// Relay submits one turn. Every outcome, including internal failure, comes
// back as a ChatResponse; nothing is thrown past this boundary.
func (s *ChatService) Relay(ctx context.Context, req domain.ChatRequest) domain.ChatResponse {
	result := s.agent.SubmitTurn(ctx, agent.TurnRequest{
		Text:      req.Text,
		UserID:    req.UserID,
		UserName:  req.UserName,
		SessionID: req.SessionID,
	})

	timestamp := time.Now().UTC().Format(time.RFC3339)

	if !result.Success {
		log.Error().
			Str("session_id", req.SessionID).
			Str("error", result.Error).
			Msg("turn relay failed")
		return domain.ChatResponse{
			Success:   false,
			Error:     result.Error,
			Timestamp: timestamp,
		}
	}

	s.recordTurn(ctx, req, result)

	return domain.ChatResponse{
		Success:              true,
		Response:             result.Response,
		SessionID:            result.SessionID,
		WasNewSessionCreated: result.NewSession,
		Timestamp:            timestamp,
	}
}

// recordTurn persists the session row and transcript. Best effort: a storage
// failure here must not fail a turn the agent already answered.
func (s *ChatService) recordTurn(ctx context.Context, req domain.ChatRequest, result agent.TurnResult) {
	now := time.Now()

	session := &domain.Session{
		SessionID: result.SessionID,
		UserKey:   result.UserKey,
		UserName:  req.UserName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Upsert(ctx, session); err != nil {
		log.Error().Err(err).Str("session_id", result.SessionID).Msg("failed to save session")
		return
	}

	userMsg := &domain.Message{
		ID:        uuid.New(),
		SessionID: result.SessionID,
		Role:      domain.RoleUser,
		Content:   req.Text,
		CreatedAt: now,
	}
	if err := s.messageRepo.Create(ctx, userMsg); err != nil {
		log.Error().Err(err).Msg("failed to save user message")
	}

	assistantMsg := &domain.Message{
		ID:        uuid.New(),
		SessionID: result.SessionID,
		Role:      domain.RoleAssistant,
		Content:   result.Response,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, assistantMsg); err != nil {
		log.Error().Err(err).Msg("failed to save assistant message")
	}
}

// GetTranscript returns the stored messages for a session, newest first
func (s *ChatService) GetTranscript(ctx context.Context, sessionID string) ([]domain.Message, error) {
	// 50 messages limit for now
	return s.messageRepo.ListBySession(ctx, sessionID, 50)
}

// DeleteSession removes a session; its bound lead is tombstoned by the store
func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}
