package domain

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TeamMember is a person attached to a session, e.g. a speaker or an organizer.
type TeamMember struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Session represents a scheduled conference talk or workshop.
// JSON field names follow the wire format the web client already uses.
// swagger:model Session
type Session struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	StartDate   time.Time    `json:"startDate"`
	EndDate     time.Time    `json:"endDate"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
	Location    string       `json:"location"`
	Tags        []string     `json:"tags"`
	Organizers  []string     `json:"organizers"`
	Info        string       `json:"info"`
	EventID     int64        `json:"event_id"`
	HasTicket   bool         `json:"hasTicket"`
	EventType   string       `json:"event_type"`
	Level       string       `json:"level"`
	Format      string       `json:"format"`
	Equipment   string       `json:"equipment"`
	Track       string       `json:"track"`
	TeamMembers []TeamMember `json:"team_members"`
	SubEventID  *int64       `json:"subevent_id"`
	QuotaID     *int64       `json:"quota_id"`
	EventSlug   string       `json:"event_slug"`
	EventItemID int64        `json:"event_item_id"`
	CreatorID   string       `json:"creator_uuid"`
	CreatedAt   time.Time    `json:"created_at"`
}

// TicketLinkComplete reports whether a ticketed session carries both vendor ids.
func (s *Session) TicketLinkComplete() bool {
	if !s.HasTicket {
		return true
	}
	return s.SubEventID != nil && s.QuotaID != nil
}

// Draft defaults applied whenever a new draft is started or reset.
const (
	DefaultStartTime = "00"
	DefaultDuration  = "0"
	DefaultFormat    = "Live"
	DefaultLevel     = "Beginner"
	DefaultTrack     = "ZK Week"
	DefaultEventType = "Workshop"
)

// SessionDraft is the in-progress session collected by the three-step creation form.
// StartTime may be a bare hour ("09") or "HH:MM"; Duration is a number of hours.
// swagger:model SessionDraft
type SessionDraft struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	StartDate   Date         `json:"startDate"`
	EndDate     *Date        `json:"endDate,omitempty"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime,omitempty"`
	Duration    string       `json:"duration"`
	Location    string       `json:"location"`
	Tags        []string     `json:"tags"`
	Organizers  []string     `json:"organizers,omitempty"`
	Info        string       `json:"info"`
	EventID     int64        `json:"event_id"`
	HasTicket   bool         `json:"hasTicket"`
	EventType   string       `json:"event_type"`
	Level       string       `json:"level"`
	Format      string       `json:"format"`
	Equipment   string       `json:"equipment"`
	Track       string       `json:"track"`
	TeamMembers []TeamMember `json:"team_members"`
	EventSlug   string       `json:"event_slug"`
	EventItemID int64        `json:"event_item_id"`
}

// NewSessionDraft returns the default draft for the given event.
func NewSessionDraft(event *Event, today time.Time) *SessionDraft {
	return &SessionDraft{
		Name:        "",
		TeamMembers: []TeamMember{},
		StartDate:   NewDate(today),
		StartTime:   DefaultStartTime,
		Location:    "",
		Tags:        []string{},
		Info:        "",
		EventID:     event.ID,
		Duration:    DefaultDuration,
		HasTicket:   false,
		Format:      DefaultFormat,
		Level:       DefaultLevel,
		Equipment:   "",
		Description: "",
		Track:       DefaultTrack,
		EventType:   DefaultEventType,
		EventSlug:   event.Slug,
		EventItemID: event.ItemID,
	}
}

// Validate returns a list of problems with the draft; empty means valid.
func (d *SessionDraft) Validate() []string {
	var errs []string
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "name is required")
	}
	if d.StartDate.IsZero() {
		errs = append(errs, "startDate is required")
	}
	if _, err := FormatStartTime(d.StartTime); err != nil {
		errs = append(errs, err.Error())
	}
	if d.EndTime != "" {
		if _, err := FormatStartTime(d.EndTime); err != nil {
			errs = append(errs, "endTime: "+err.Error())
		}
	}
	if _, err := parseDuration(d.Duration); err != nil {
		errs = append(errs, err.Error())
	}
	for i, m := range d.TeamMembers {
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, fmt.Sprintf("team_members[%d].name is required", i))
		}
	}
	return errs
}

// ToSession converts the draft into a Session owned by creatorID. Start time is normalized to
// HH:MM and the end date defaults to the start date. Without an explicit endTime a positive
// Duration sets both end fields, so a session running past midnight ends on the next day.
func (d *SessionDraft) ToSession(creatorID string) (*Session, error) {
	startTime, err := FormatStartTime(d.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start := d.StartDate.Time
	end := start
	if d.EndDate != nil && !d.EndDate.IsZero() {
		end = d.EndDate.Time
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}
	startAt := atClock(start, startTime)

	endTime := ""
	if d.EndTime != "" {
		if endTime, err = FormatStartTime(d.EndTime); err != nil {
			return nil, fmt.Errorf("%w: endTime: %v", ErrInvalidInput, err)
		}
		if atClock(end, endTime).Before(startAt) {
			return nil, fmt.Errorf("%w: session ends before it starts", ErrInvalidInput)
		}
	} else {
		length, err := parseDuration(d.Duration)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if length > 0 {
			endAt := startAt.Add(length)
			endTime = endAt.Format("15:04")
			end = NewDate(endAt).Time
		}
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	members := d.TeamMembers
	if members == nil {
		members = []TeamMember{}
	}
	return &Session{
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		StartDate:   start,
		EndDate:     end,
		StartTime:   startTime,
		EndTime:     endTime,
		Location:    d.Location,
		Tags:        tags,
		Organizers:  d.Organizers,
		Info:        d.Info,
		EventID:     d.EventID,
		HasTicket:   d.HasTicket,
		EventType:   d.EventType,
		Level:       d.Level,
		Format:      d.Format,
		Equipment:   d.Equipment,
		Track:       d.Track,
		TeamMembers: members,
		EventSlug:   d.EventSlug,
		EventItemID: d.EventItemID,
		CreatorID:   creatorID,
	}, nil
}

// FormatStartTime turns a bare hour ("9", "09") into "09:00" and validates "HH:MM" input.
func FormatStartTime(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		v = DefaultStartTime
	}
	if !strings.Contains(v, ":") {
		h, err := strconv.Atoi(v)
		if err != nil || h < 0 || h > 23 {
			return "", fmt.Errorf("startTime must be an hour between 00 and 23")
		}
		return fmt.Sprintf("%02d:00", h), nil
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		if t, err = time.Parse("15:04:05", v); err != nil {
			return "", fmt.Errorf("startTime must be HH or HH:MM")
		}
	}
	return t.Format("15:04"), nil
}

func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	hours, err := strconv.ParseFloat(v, 64)
	if err != nil || hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, fmt.Errorf("duration must be a non-negative number of hours")
	}
	return time.Duration(hours * float64(time.Hour)), nil
}

// atClock returns day at the HH:MM clock time.
func atClock(day time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return day
	}
	y, m, dd := day.Date()
	return time.Date(y, m, dd, t.Hour(), t.Minute(), 0, 0, day.Location())
}

// CompensationPolicy decides what happens to vendor resources when a ticketed session
// cannot be completed.
type CompensationPolicy string

const (
	// CompensateRollback deletes the quota and sub-event created before the failure.
	CompensateRollback CompensationPolicy = "rollback"
	// CompensateNone leaves vendor resources in place.
	CompensateNone CompensationPolicy = "none"
)

// ParseCompensationPolicy maps a config value to a policy, defaulting to rollback.
func ParseCompensationPolicy(v string) CompensationPolicy {
	if strings.EqualFold(strings.TrimSpace(v), string(CompensateNone)) {
		return CompensateNone
	}
	return CompensateRollback
}

// Saga step names and statuses recorded on a SessionCreationResult.
const (
	StepCreateSubEvent = "create_subevent"
	StepCreateQuota    = "create_quota"
	StepInsertSession  = "insert_session"
	StepDeleteQuota    = "delete_quota"
	StepDeleteSubEvent = "delete_subevent"

	StepDone   = "done"
	StepFailed = "failed"
)

// SagaStep is one external call made by the creation workflow.
type SagaStep struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// CreateSessionRequest is the input of the session-creation workflow.
type CreateSessionRequest struct {
	CreatorID      string
	EventID        int64
	Draft          SessionDraft
	TicketAmount   string
	IdempotencyKey string
}

// SessionCreationResult is the single outcome of the creation workflow.
type SessionCreationResult struct {
	Session  *Session   `json:"session"`
	Steps    []SagaStep `json:"steps"`
	Replayed bool       `json:"replayed"`
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id int64) (*Session, error)
	ListByEventID(ctx context.Context, eventID int64, page PaginationParams) ([]*Session, int, error)
}

// SessionCreator runs the multi-step session-creation workflow.
type SessionCreator interface {
	DraftDefaults(ctx context.Context, eventID int64) (*SessionDraft, error)
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionCreationResult, error)
}

// SessionDetail is a session as seen by one viewer.
type SessionDetail struct {
	Session   *Session `json:"session"`
	RSVPID    int64    `json:"rsvp_id"`
	RSVPCount int      `json:"rsvp_count"`
	Favorited bool     `json:"favorited"`
}

// CalendarDay groups the sessions starting on one date.
type CalendarDay struct {
	Date     string     `json:"date"`
	Sessions []*Session `json:"sessions"`
}

// SessionService defines read access to sessions and the direct insert path.
type SessionService interface {
	StoreSession(ctx context.Context, creatorID string, session *Session) error
	GetSession(ctx context.Context, viewerID string, id int64) (*SessionDetail, error)
	ListEventSessions(ctx context.Context, eventID int64, page PaginationParams) ([]*Session, int, error)
	Calendar(ctx context.Context, eventID int64) ([]*CalendarDay, error)
}
