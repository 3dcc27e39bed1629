package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"conferencesessions/internal/domain"
)

type proofRequestRepository struct {
	DB *sql.DB
}

// NewProofRequestRepository returns a domain.ProofRequestRepository implemented with Postgres.
func NewProofRequestRepository(db *sql.DB) domain.ProofRequestRepository {
	return &proofRequestRepository{DB: db}
}

// Create stores the hashed state and drops requests that have already expired.
func (r *proofRequestRepository) Create(ctx context.Context, stateHash string, expiresAt time.Time) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM proof_requests WHERE expires_at <= NOW()`); err != nil {
		return err
	}
	query := `
		INSERT INTO proof_requests (state_hash, expires_at)
		VALUES ($1, $2)
	`
	_, err := r.DB.ExecContext(ctx, query, stateHash, expiresAt)
	return err
}

// Consume deletes the request in the same statement that checks it, so a state can be used once.
func (r *proofRequestRepository) Consume(ctx context.Context, stateHash string) (bool, error) {
	query := `
		DELETE FROM proof_requests
		WHERE state_hash = $1 AND expires_at > NOW()
		RETURNING id
	`
	var id int64
	err := r.DB.QueryRowContext(ctx, query, stateHash).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
