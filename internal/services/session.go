package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"conferencesessions/internal/domain"
)

type sessionService struct {
	eventRepo      domain.EventRepository
	sessionRepo    domain.SessionRepository
	rsvpRepo       domain.RSVPRepository
	favoriteRepo   domain.FavoriteRepository
	contextTimeout time.Duration
}

// NewSessionService returns the read side of sessions plus the direct insert used by the
// legacy createSession endpoint.
func NewSessionService(
	eventRepo domain.EventRepository,
	sessionRepo domain.SessionRepository,
	rsvpRepo domain.RSVPRepository,
	favoriteRepo domain.FavoriteRepository,
	timeout time.Duration,
) domain.SessionService {
	return &sessionService{
		eventRepo:      eventRepo,
		sessionRepo:    sessionRepo,
		rsvpRepo:       rsvpRepo,
		favoriteRepo:   favoriteRepo,
		contextTimeout: timeout,
	}
}

func (s *sessionService) StoreSession(ctx context.Context, creatorID string, session *domain.Session) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if creatorID == "" {
		return domain.ErrUnauthorized
	}
	session.Name = strings.TrimSpace(session.Name)
	if session.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if session.StartDate.IsZero() {
		return fmt.Errorf("%w: startDate is required", domain.ErrInvalidInput)
	}
	if !session.TicketLinkComplete() {
		return fmt.Errorf("%w: a ticketed session needs subEventId and quota_id", domain.ErrInvalidInput)
	}
	startTime, err := domain.FormatStartTime(session.StartTime)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	session.StartTime = startTime
	if session.EndDate.IsZero() {
		session.EndDate = session.StartDate
	}
	session.CreatorID = creatorID
	session.CreatedAt = time.Now()

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *sessionService) GetSession(ctx context.Context, viewerID string, id int64) (*domain.SessionDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	count, err := s.rsvpRepo.CountBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count rsvps: %w", err)
	}
	detail := &domain.SessionDetail{Session: session, RSVPCount: count}
	if viewerID == "" {
		return detail, nil
	}

	rsvp, err := s.rsvpRepo.GetBySessionAndUser(ctx, id, viewerID)
	switch {
	case err == nil:
		detail.RSVPID = rsvp.ID
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get viewer rsvp: %w", err)
	}
	if detail.Favorited, err = s.favoriteRepo.Exists(ctx, viewerID, id); err != nil {
		return nil, fmt.Errorf("get viewer favorite: %w", err)
	}
	return detail, nil
}

func (s *sessionService) ListEventSessions(ctx context.Context, eventID int64, page domain.PaginationParams) ([]*domain.Session, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, 0, err
	}
	sessions, total, err := s.sessionRepo.ListByEventID(ctx, eventID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return sessions, total, nil
}

// Calendar groups every session of the event by start date, in date order.
func (s *sessionService) Calendar(ctx context.Context, eventID int64) ([]*domain.CalendarDay, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	sessions, _, err := s.sessionRepo.ListByEventID(ctx, eventID, domain.PaginationParams{})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	days := make([]*domain.CalendarDay, 0)
	index := make(map[string]*domain.CalendarDay)
	for _, sess := range sessions {
		key := sess.StartDate.Format(domain.DateLayout)
		day, ok := index[key]
		if !ok {
			day = &domain.CalendarDay{Date: key, Sessions: []*domain.Session{}}
			index[key] = day
			days = append(days, day)
		}
		day.Sessions = append(day.Sessions, sess)
	}
	return days, nil
}

func (s *sessionService) ensureEvent(ctx context.Context, eventID int64) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	return nil
}
