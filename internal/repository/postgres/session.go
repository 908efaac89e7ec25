package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/agent-relay/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Upsert(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (session_id, user_key, user_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE
		SET user_name = EXCLUDED.user_name, updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		session.SessionID,
		session.UserKey,
		session.UserName,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, user_key, user_name, created_at, updated_at
		FROM sessions
		WHERE session_id = $1
	`
	var s domain.Session
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&s.SessionID,
		&s.UserKey,
		&s.UserName,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// Delete removes the session row. The bound lead is tombstoned first so it
// stays recoverable; transcript rows cascade away with the session.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE session_id = $1 AND deleted_at IS NULL
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to tombstone bound lead: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session delete: %w", err)
	}
	return nil
}
