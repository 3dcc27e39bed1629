package domain

import (
	"context"
	"time"
)

// RSVP represents a user's intent to attend a session.
// swagger:model RSVP
type RSVP struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID int64     `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRSVP creates a new RSVP. ID is set by the repository on create.
func NewRSVP(userID string, sessionID int64, createdAt time.Time) *RSVP {
	return &RSVP{
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: createdAt,
	}
}

// RSVPRepository defines storage operations for RSVPs.
type RSVPRepository interface {
	// Create inserts the RSVP. Returns created=false and fills the existing row when the user
	// already RSVP'd to the session.
	Create(ctx context.Context, rsvp *RSVP) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*RSVP, error)
	GetBySessionAndUser(ctx context.Context, sessionID int64, userID string) (*RSVP, error)
	CountBySession(ctx context.Context, sessionID int64) (int, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// RSVPService defines the RSVP toggle for the authenticated viewer.
type RSVPService interface {
	Create(ctx context.Context, userID string, sessionID int64) (*RSVP, error)
	Delete(ctx context.Context, userID string, rsvpID int64) (bool, error)
	// ViewerRSVP returns the viewer's RSVP id for the session, or 0 when there is none.
	ViewerRSVP(ctx context.Context, userID string, sessionID int64) (int64, error)
	CheckInCode(ctx context.Context, userID string, rsvpID int64) ([]byte, error)
	// CheckIn validates a scanned badge token. Only the session's creator may scan.
	CheckIn(ctx context.Context, scannerID, token string) (*RSVP, error)
}

// CheckInEncoder renders an RSVP as a scannable check-in badge.
type CheckInEncoder interface {
	Encode(rsvp *RSVP) ([]byte, error)
	Verify(token string) (*RSVP, error)
}
