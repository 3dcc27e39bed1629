package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencesessions/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

// NewRSVPRepository returns a domain.RSVPRepository implemented with Postgres.
func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{DB: db}
}

func (r *rsvpRepository) Create(ctx context.Context, rsvp *domain.RSVP) (bool, error) {
	query := `
		INSERT INTO rsvps (user_id, session_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, user_id) DO NOTHING
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, rsvp.UserID, rsvp.SessionID, rsvp.CreatedAt).Scan(&rsvp.ID)
	if err == nil {
		return true, nil
	}
	if pqCode(err) == foreignKeyViolation {
		return false, domain.ErrNotFound
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	existing, err := r.GetBySessionAndUser(ctx, rsvp.SessionID, rsvp.UserID)
	if err != nil {
		return false, err
	}
	*rsvp = *existing
	return false, nil
}

func (r *rsvpRepository) GetByID(ctx context.Context, id int64) (*domain.RSVP, error) {
	query := `
		SELECT id, user_id, session_id, created_at
		FROM rsvps
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *rsvpRepository) GetBySessionAndUser(ctx context.Context, sessionID int64, userID string) (*domain.RSVP, error) {
	query := `
		SELECT id, user_id, session_id, created_at
		FROM rsvps
		WHERE session_id = $1 AND user_id = $2
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, sessionID, userID))
}

func (r *rsvpRepository) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM rsvps WHERE session_id = $1`, sessionID).Scan(&n)
	return n, err
}

func (r *rsvpRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM rsvps WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *rsvpRepository) scanOne(row *sql.Row) (*domain.RSVP, error) {
	rsvp := &domain.RSVP{}
	if err := row.Scan(&rsvp.ID, &rsvp.UserID, &rsvp.SessionID, &rsvp.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}
