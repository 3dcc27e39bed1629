package postgres

import (
	"context"
	"database/sql"

	"conferencesessions/internal/domain"
)

type favoriteRepository struct {
	DB *sql.DB
}

func NewFavoriteRepository(db *sql.DB) domain.FavoriteRepository {
	return &favoriteRepository{DB: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID string, sessionID int64) error {
	query := `
		INSERT INTO favorites (user_id, session_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, session_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, userID, sessionID)
	if pqCode(err) == foreignKeyViolation {
		return domain.ErrNotFound
	}
	return err
}

func (r *favoriteRepository) Remove(ctx context.Context, userID string, sessionID int64) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND session_id = $2`, userID, sessionID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID string, sessionID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND session_id = $2)`
	err := r.DB.QueryRowContext(ctx, query, userID, sessionID).Scan(&exists)
	return exists, err
}

func (r *favoriteRepository) ListSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions s
		INNER JOIN favorites f ON f.session_id = s.id
		WHERE f.user_id = $1
		ORDER BY s.start_date, s.start_time, s.id
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}
