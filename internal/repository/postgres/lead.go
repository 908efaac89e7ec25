package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/agent-relay/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// LeadRepository implements domain.LeadRepository
type LeadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	query := `
		INSERT INTO leads (id, session_id, name, phone, email, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		lead.ID,
		lead.SessionID,
		lead.Name,
		lead.Phone,
		lead.Email,
		lead.Notes,
		lead.Status,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrSessionAlreadyBound
		}
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	query := `
		SELECT id, session_id, name, phone, email, notes, status, created_at, updated_at, deleted_at
		FROM leads
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *LeadRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Lead, error) {
	query := `
		SELECT id, session_id, name, phone, email, notes, status, created_at, updated_at, deleted_at
		FROM leads
		WHERE session_id = $1 AND deleted_at IS NULL
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, sessionID))
}

func (r *LeadRepository) List(ctx context.Context, limit, offset int) ([]domain.Lead, error) {
	query := `
		SELECT id, session_id, name, phone, email, notes, status, created_at, updated_at, deleted_at
		FROM leads
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		var l domain.Lead
		if err := rows.Scan(
			&l.ID,
			&l.SessionID,
			&l.Name,
			&l.Phone,
			&l.Email,
			&l.Notes,
			&l.Status,
			&l.CreatedAt,
			&l.UpdatedAt,
			&l.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	query := `
		UPDATE leads
		SET name = $1, phone = $2, email = $3, notes = $4, status = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query,
		lead.Name,
		lead.Phone,
		lead.Email,
		lead.Notes,
		lead.Status,
		lead.UpdatedAt,
		lead.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete tombstones a lead; the row stays recoverable
func (r *LeadRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LeadRepository) scanOne(row pgx.Row) (*domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(
		&l.ID,
		&l.SessionID,
		&l.Name,
		&l.Phone,
		&l.Email,
		&l.Notes,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &l, nil
}
