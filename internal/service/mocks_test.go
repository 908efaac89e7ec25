package service

import (
	"context"

	"github.com/Rrens/agent-relay/internal/agent"
	"github.com/Rrens/agent-relay/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAgentClient mocks the AgentClient interface
type MockAgentClient struct {
	mock.Mock
}

func (m *MockAgentClient) SubmitTurn(ctx context.Context, req agent.TurnRequest) agent.TurnResult {
	args := m.Called(ctx, req)
	return args.Get(0).(agent.TurnResult)
}

// MockSessionRepository mocks the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Upsert(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockLeadRepository mocks the LeadRepository interface
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Lead, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, limit, offset int) ([]domain.Lead, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMessageRepository mocks the MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, sessionID, limit)
	return args.Get(0).([]domain.Message), args.Error(1)
}
