package domain

import (
	"context"
	"encoding/json"
	"time"
)

// SubEventRequest describes a ticketed instance of a session on the ticketing vendor.
type SubEventRequest struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Slug      string
	ItemID    int64
}

// QuotaRequest describes the ticket inventory of a sub-event.
type QuotaRequest struct {
	Name         string
	TicketAmount int
	SubEventID   int64
	Slug         string
	ItemID       int64
}

// TicketingClient is the port to the ticketing vendor REST API. Create calls return the raw
// vendor JSON along with the id of the created resource.
type TicketingClient interface {
	CreateEvent(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	CreateSubEvent(ctx context.Context, req SubEventRequest) (json.RawMessage, int64, error)
	CreateQuota(ctx context.Context, req QuotaRequest) (json.RawMessage, int64, error)
	DeleteSubEvent(ctx context.Context, slug string, subEventID int64) error
	DeleteQuota(ctx context.Context, slug string, quotaID int64) error
}
