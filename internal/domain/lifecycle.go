package domain

import (
	"context"
	"time"
)

// Session lifecycle event types.
const (
	SessionCreated     = "session.created"
	SessionCompensated = "session.compensated"
)

// SessionLifecycleEvent is published after the creation workflow settles.
type SessionLifecycleEvent struct {
	Type       string    `json:"type"`
	SessionID  int64     `json:"session_id,omitempty"`
	EventID    int64     `json:"event_id"`
	Name       string    `json:"name"`
	SubEventID int64     `json:"subevent_id,omitempty"`
	QuotaID    int64     `json:"quota_id,omitempty"`
	CreatorID  string    `json:"creator_uuid"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SessionEventPublisher publishes lifecycle events to downstream consumers.
type SessionEventPublisher interface {
	Publish(ctx context.Context, event SessionLifecycleEvent) error
}
