package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeadStatus represents the lifecycle state of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusClosed    LeadStatus = "closed"
)

// Lead represents a prospective contact, optionally bound one-to-one to a
// conversation session. Rows are tombstoned, not physically erased.
type Lead struct {
	ID        uuid.UUID  `json:"id"`
	SessionID *string    `json:"session_id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Email     string     `json:"email,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Status    LeadStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// LeadFields carries the fields supplied on create or update. Nil means "not
// supplied": merges overwrite only what the caller actually sent.
type LeadFields struct {
	Name   *string     `json:"name" validate:"omitempty,max=255"`
	Phone  *string     `json:"phone" validate:"omitempty,max=32"`
	Email  *string     `json:"email" validate:"omitempty,email"`
	Notes  *string     `json:"notes"`
	Status *LeadStatus `json:"status" validate:"omitempty,oneof=new contacted qualified closed"`
}

// ApplyTo overwrites the lead's fields with the supplied values
func (f LeadFields) ApplyTo(lead *Lead) {
	if f.Name != nil {
		lead.Name = *f.Name
	}
	if f.Phone != nil {
		lead.Phone = *f.Phone
	}
	if f.Email != nil {
		lead.Email = *f.Email
	}
	if f.Notes != nil {
		lead.Notes = *f.Notes
	}
	if f.Status != nil {
		lead.Status = *f.Status
	}
}

// LeadRepository defines the interface for lead storage
type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	Get(ctx context.Context, id uuid.UUID) (*Lead, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Lead, error)
	List(ctx context.Context, limit, offset int) ([]Lead, error)
	Update(ctx context.Context, lead *Lead) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
