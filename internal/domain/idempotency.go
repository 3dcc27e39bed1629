package domain

import (
	"context"
	"time"
)

// IdempotencyRecord is the state stored under an idempotency key.
type IdempotencyRecord struct {
	// SessionID is zero while the first attempt is still in flight.
	SessionID int64
}

// IdempotencyStore guards the session-creation workflow against duplicate submits.
type IdempotencyStore interface {
	// Reserve claims key. When the key already exists it returns reserved=false and the
	// stored record.
	Reserve(ctx context.Context, key string, ttl time.Duration) (reserved bool, rec *IdempotencyRecord, err error)
	Complete(ctx context.Context, key string, sessionID int64, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
