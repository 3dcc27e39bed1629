package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"conferencesessions/internal/delivery/http/helpers"
	"conferencesessions/internal/delivery/http/middleware"
	"conferencesessions/internal/domain"
)

// TicketAmount accepts the ticket count as a JSON number or a numeric string.
type TicketAmount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *TicketAmount) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = TicketAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ticketAmount must be a number")
	}
	*a = TicketAmount(n.String())
	return nil
}

// CreateSessionRequest is the body of POST /api/events/{eventID}/sessions: the draft fields
// plus the ticket amount for ticketed sessions.
type CreateSessionRequest struct {
	domain.SessionDraft
	TicketAmount TicketAmount `json:"ticketAmount"`
}

// Validate implements Validator.
func (c CreateSessionRequest) Validate() []string {
	errs := c.SessionDraft.Validate()
	if c.HasTicket && strings.TrimSpace(string(c.TicketAmount)) == "" {
		errs = append(errs, "ticketAmount is required for a ticketed session")
	}
	return errs
}

// StoreSessionRequest is the body of POST /api/createSession.
type StoreSessionRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	StartDate   domain.Date         `json:"startDate"`
	EndDate     *domain.Date        `json:"endDate"`
	StartTime   string              `json:"startTime"`
	EndTime     string              `json:"endTime"`
	Location    string              `json:"location"`
	Tags        []string            `json:"tags"`
	Organizers  []string            `json:"organizers"`
	Info        string              `json:"info"`
	EventID     int64               `json:"event_id"`
	HasTicket   bool                `json:"hasTicket"`
	EventType   string              `json:"event_type"`
	Level       string              `json:"level"`
	Format      string              `json:"format"`
	Equipment   string              `json:"equipment"`
	Track       string              `json:"track"`
	TeamMembers []domain.TeamMember `json:"team_members"`
	EventSlug   string              `json:"event_slug"`
	EventItemID int64               `json:"event_item_id"`
	SubEventID  *int64              `json:"subEventId"`
	QuotaID     *int64              `json:"quota_id"`
	// Accepted and ignored: the draft form sends it along with the session fields.
	Duration string `json:"duration,omitempty"`
}

// Validate implements Validator.
func (s StoreSessionRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	if s.StartDate.IsZero() {
		errs = append(errs, "startDate is required")
	}
	if s.EventID <= 0 {
		errs = append(errs, "event_id is required")
	}
	return errs
}

func (s StoreSessionRequest) toSession() *domain.Session {
	end := s.StartDate.Time
	if s.EndDate != nil && !s.EndDate.IsZero() {
		end = s.EndDate.Time
	}
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	members := s.TeamMembers
	if members == nil {
		members = []domain.TeamMember{}
	}
	return &domain.Session{
		Name:        s.Name,
		Description: s.Description,
		StartDate:   s.StartDate.Time,
		EndDate:     end,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Location:    s.Location,
		Tags:        tags,
		Organizers:  s.Organizers,
		Info:        s.Info,
		EventID:     s.EventID,
		HasTicket:   s.HasTicket,
		EventType:   s.EventType,
		Level:       s.Level,
		Format:      s.Format,
		Equipment:   s.Equipment,
		Track:       s.Track,
		TeamMembers: members,
		SubEventID:  s.SubEventID,
		QuotaID:     s.QuotaID,
		EventSlug:   s.EventSlug,
		EventItemID: s.EventItemID,
	}
}

// ListSessionsResponse is the data of GET /api/events/{eventID}/sessions.
type ListSessionsResponse struct {
	Sessions   []*domain.Session      `json:"sessions"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type SessionController struct {
	Logger   *slog.Logger
	Creator  domain.SessionCreator
	Sessions domain.SessionService
}

func NewSessionController(logger *slog.Logger, creator domain.SessionCreator, sessions domain.SessionService) *SessionController {
	return &SessionController{
		Logger:   logger,
		Creator:  creator,
		Sessions: sessions,
	}
}

// DraftDefaults godoc
// @Summary Get the default session draft
// @Description Returns the reset state of the session form for the event. Clients reset to it after every submit.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the draft"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{eventID}/sessions/draft [get]
func (c *SessionController) DraftDefaults(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	draft, err := c.Creator.DraftDefaults(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, draft)
}

// CreateSession godoc
// @Summary Create a session
// @Description Creates a session. For a ticketed session the ticketing sub-event and quota are created first; on failure they are rolled back and a single generic error is returned.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param Idempotency-Key header string false "Replays the first result for repeated submits"
// @Param body body CreateSessionRequest true "Session draft"
// @Success 201 {object} helpers.APIResponse "data contains the session and the steps taken"
// @Success 200 {object} helpers.APIResponse "replayed result for a known Idempotency-Key"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID}/sessions [post]
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Creator.CreateSession(r.Context(), domain.CreateSessionRequest{
		CreatorID:      userID,
		EventID:        eventID,
		Draft:          req.SessionDraft,
		TicketAmount:   string(req.TicketAmount),
		IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	helpers.WriteJSONSuccess(w, status, result)
}

// StoreSession godoc
// @Summary Insert a session directly
// @Description Inserts a session as given. A ticketed session must carry subEventId and quota_id.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StoreSessionRequest true "Session"
// @Success 201 {string} string "Event created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/createSession [post]
func (c *SessionController) StoreSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req StoreSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Sessions.StoreSession(r.Context(), userID, req.toSession()); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, "Event created")
}

// GetSession godoc
// @Summary Get a session
// @Description Returns the session with its RSVP count. With a valid token the viewer's rsvp_id and favorite flag are filled in.
// @Tags sessions
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} helpers.APIResponse "data contains the session detail"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/sessions/{sessionID} [get]
func (c *SessionController) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "sessionID")
	if !ok {
		return
	}
	viewerID, _ := middleware.UserIDFromContext(r.Context())
	detail, err := c.Sessions.GetSession(r.Context(), viewerID, sessionID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// ListEventSessions godoc
// @Summary List the sessions of an event
// @Description Sessions ordered by start date and time. Supports page and page_size.
// @Tags sessions
// @Produce json
// @Param eventID path int true "Event ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains sessions and pagination"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{eventID}/sessions [get]
func (c *SessionController) ListEventSessions(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	page := helpers.ParsePagination(r)
	sessions, total, err := c.Sessions.ListEventSessions(r.Context(), eventID, page)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListSessionsResponse{
		Sessions:   sessions,
		Pagination: helpers.NewPaginationMeta(page.Page, page.PageSize, total),
	})
}

// Calendar godoc
// @Summary Event calendar
// @Description All sessions of the event grouped per start date.
// @Tags sessions
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the calendar days"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{eventID}/calendar [get]
func (c *SessionController) Calendar(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	days, err := c.Sessions.Calendar(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, days)
}
