package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/agent-relay/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LeadService enforces the at-most-one-lead-per-session invariant
type LeadService struct {
	leadRepo    domain.LeadRepository
	sessionRepo domain.SessionRepository
}

// NewLeadService creates a new lead service
func NewLeadService(leadRepo domain.LeadRepository, sessionRepo domain.SessionRepository) *LeadService {
	return &LeadService{
		leadRepo:    leadRepo,
		sessionRepo: sessionRepo,
	}
}

// BindOrCreate creates or updates the lead associated with a session.
// Three-way branch: no usable session context creates a standalone lead; a
// session with a bound lead merges the supplied fields into it; a session
// without one gets a new lead bound to it. Re-presenting the same session id
// always lands on the same lead.
func (s *LeadService) BindOrCreate(ctx context.Context, sessionID string, fields domain.LeadFields) (*domain.Lead, error) {
	if sessionID == "" {
		return s.create(ctx, nil, fields)
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The session row doesn't exist yet; binding is best effort, so
			// the lead is created standalone rather than failing.
			log.Warn().Str("session_id", sessionID).Msg("session unknown, creating standalone lead")
			return s.create(ctx, nil, fields)
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	existing, err := s.leadRepo.GetBySessionID(ctx, session.SessionID)
	if err == nil {
		return s.merge(ctx, existing, fields)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up bound lead: %w", err)
	}

	lead, err := s.create(ctx, &session.SessionID, fields)
	if errors.Is(err, domain.ErrSessionAlreadyBound) {
		// Lost a create race; the winner's record is the one to merge into.
		existing, lookupErr := s.leadRepo.GetBySessionID(ctx, session.SessionID)
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to re-read bound lead: %w", lookupErr)
		}
		return s.merge(ctx, existing, fields)
	}
	return lead, err
}

// Get retrieves a lead by id
func (s *LeadService) Get(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	return s.leadRepo.Get(ctx, id)
}

// List returns active leads, newest first
func (s *LeadService) List(ctx context.Context, limit, offset int) ([]domain.Lead, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.leadRepo.List(ctx, limit, offset)
}

// Update merges the supplied fields into an existing lead
func (s *LeadService) Update(ctx context.Context, id uuid.UUID, fields domain.LeadFields) (*domain.Lead, error) {
	lead, err := s.leadRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.merge(ctx, lead, fields)
}

// Delete tombstones a lead
func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.leadRepo.SoftDelete(ctx, id)
}

func (s *LeadService) create(ctx context.Context, sessionID *string, fields domain.LeadFields) (*domain.Lead, error) {
	now := time.Now()
	lead := &domain.Lead{
		ID:        uuid.New(),
		SessionID: sessionID,
		Status:    domain.LeadStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.ApplyTo(lead)

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		if errors.Is(err, domain.ErrSessionAlreadyBound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return lead, nil
}

func (s *LeadService) merge(ctx context.Context, lead *domain.Lead, fields domain.LeadFields) (*domain.Lead, error) {
	fields.ApplyTo(lead)
	lead.UpdatedAt = time.Now()

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}
