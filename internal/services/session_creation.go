package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"conferencesessions/internal/domain"
)

const (
	compensationTimeout   = 10 * time.Second
	defaultPublishTimeout = 3 * time.Second
)

// SessionCreationConfig tunes the session-creation workflow.
type SessionCreationConfig struct {
	Compensation   domain.CompensationPolicy
	IdempotencyTTL time.Duration
	Timeout        time.Duration
	// PublishTimeout bounds each lifecycle event write on the request path.
	PublishTimeout time.Duration
}

type sessionCreationService struct {
	eventRepo   domain.EventRepository
	sessionRepo domain.SessionRepository
	ticketing   domain.TicketingClient
	idempotency domain.IdempotencyStore
	publisher   domain.SessionEventPublisher
	logger      *slog.Logger
	cfg         SessionCreationConfig
	now         func() time.Time
}

// NewSessionCreationService returns the workflow that creates a session and, for ticketed
// sessions, its vendor sub-event and quota. idempotency may be nil to disable idempotency keys.
func NewSessionCreationService(
	eventRepo domain.EventRepository,
	sessionRepo domain.SessionRepository,
	ticketing domain.TicketingClient,
	idempotency domain.IdempotencyStore,
	publisher domain.SessionEventPublisher,
	logger *slog.Logger,
	cfg SessionCreationConfig,
) domain.SessionCreator {
	if cfg.Compensation == "" {
		cfg.Compensation = domain.CompensateRollback
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	return &sessionCreationService{
		eventRepo:   eventRepo,
		sessionRepo: sessionRepo,
		ticketing:   ticketing,
		idempotency: idempotency,
		publisher:   publisher,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *sessionCreationService) DraftDefaults(ctx context.Context, eventID int64) (*domain.SessionDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return domain.NewSessionDraft(event, s.now()), nil
}

func (s *sessionCreationService) CreateSession(ctx context.Context, req domain.CreateSessionRequest) (*domain.SessionCreationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if req.CreatorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if problems := req.Draft.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	if req.Draft.EventID != 0 && req.Draft.EventID != req.EventID {
		return nil, fmt.Errorf("%w: event_id does not match the event in the path", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	draft := req.Draft
	draft.EventID = event.ID
	draft.EventSlug = event.Slug
	draft.EventItemID = event.ItemID
	session, err := draft.ToSession(req.CreatorID)
	if err != nil {
		return nil, err
	}

	var amount int
	if session.HasTicket {
		if amount, err = parseTicketAmount(req.TicketAmount); err != nil {
			return nil, err
		}
		if event.Slug == "" {
			return nil, fmt.Errorf("%w: event has no ticketing slug", domain.ErrInvalidInput)
		}
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		reserved, rec, err := s.idempotency.Reserve(ctx, req.IdempotencyKey, s.cfg.IdempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !reserved {
			return s.replay(ctx, rec)
		}
	}

	result, err := s.run(ctx, session, amount)
	if req.IdempotencyKey != "" && s.idempotency != nil {
		s.settleKey(ctx, req.IdempotencyKey, result, err)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *sessionCreationService) replay(ctx context.Context, rec *domain.IdempotencyRecord) (*domain.SessionCreationResult, error) {
	if rec == nil || rec.SessionID == 0 {
		return nil, fmt.Errorf("%w: a request with this idempotency key is in progress", domain.ErrConflict)
	}
	session, err := s.sessionRepo.GetByID(ctx, rec.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load replayed session: %w", err)
	}
	return &domain.SessionCreationResult{Session: session, Steps: []domain.SagaStep{}, Replayed: true}, nil
}

func (s *sessionCreationService) settleKey(ctx context.Context, key string, result *domain.SessionCreationResult, runErr error) {
	ctx = context.WithoutCancel(ctx)
	if runErr != nil {
		if err := s.idempotency.Release(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "failed to release idempotency key", "err", err)
		}
		return
	}
	if err := s.idempotency.Complete(ctx, key, result.Session.ID, s.cfg.IdempotencyTTL); err != nil {
		s.logger.WarnContext(ctx, "failed to complete idempotency key", "session_id", result.Session.ID, "err", err)
	}
}

// saga tracks the vendor resources created so far.
type saga struct {
	steps      []domain.SagaStep
	slug       string
	subEventID int64
	quotaID    int64
}

func (g *saga) record(name string, err error) {
	step := domain.SagaStep{Name: name, Status: domain.StepDone}
	if err != nil {
		step.Status = domain.StepFailed
		step.Error = err.Error()
	}
	g.steps = append(g.steps, step)
}

// run performs sub-event, quota and insert strictly in order; each output feeds the next.
func (s *sessionCreationService) run(ctx context.Context, session *domain.Session, amount int) (*domain.SessionCreationResult, error) {
	g := &saga{slug: session.EventSlug}
	log := s.logger.With("event_id", session.EventID, "name", session.Name, "has_ticket", session.HasTicket)

	if session.HasTicket {
		_, subEventID, err := s.ticketing.CreateSubEvent(ctx, domain.SubEventRequest{
			Name:      session.Name,
			StartDate: session.StartDate,
			EndDate:   session.StartDate,
			Slug:      session.EventSlug,
			ItemID:    session.EventItemID,
		})
		g.record(domain.StepCreateSubEvent, err)
		if err != nil {
			log.ErrorContext(ctx, "session creation failed", "step", domain.StepCreateSubEvent, "err", err)
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrSessionCreationFailed, domain.StepCreateSubEvent, err)
		}
		g.subEventID = subEventID

		_, quotaID, err := s.ticketing.CreateQuota(ctx, domain.QuotaRequest{
			Name:         session.Name,
			TicketAmount: amount,
			SubEventID:   subEventID,
			Slug:         session.EventSlug,
			ItemID:       session.EventItemID,
		})
		g.record(domain.StepCreateQuota, err)
		if err != nil {
			return nil, s.fail(ctx, log, g, session, domain.StepCreateQuota, err)
		}
		g.quotaID = quotaID

		session.SubEventID = &subEventID
		session.QuotaID = &quotaID
	}

	session.CreatedAt = s.now()
	err := s.sessionRepo.Create(ctx, session)
	g.record(domain.StepInsertSession, err)
	if err != nil {
		return nil, s.fail(ctx, log, g, session, domain.StepInsertSession, err)
	}

	log.InfoContext(ctx, "session created", "session_id", session.ID, "steps", len(g.steps))
	s.publish(ctx, domain.SessionLifecycleEvent{
		Type:       domain.SessionCreated,
		SessionID:  session.ID,
		EventID:    session.EventID,
		Name:       session.Name,
		SubEventID: g.subEventID,
		QuotaID:    g.quotaID,
		CreatorID:  session.CreatorID,
		OccurredAt: session.CreatedAt,
	})
	return &domain.SessionCreationResult{Session: session, Steps: g.steps}, nil
}

// fail compensates according to the configured policy and returns the single workflow error.
func (s *sessionCreationService) fail(ctx context.Context, log *slog.Logger, g *saga, session *domain.Session, step string, cause error) error {
	log.ErrorContext(ctx, "session creation failed", "step", step, "err", cause)
	err := fmt.Errorf("%w: %s: %v", domain.ErrSessionCreationFailed, step, cause)

	if g.subEventID == 0 {
		return err
	}
	if s.cfg.Compensation == domain.CompensateNone {
		log.WarnContext(ctx, "leaving vendor resources in place", "subevent_id", g.subEventID, "quota_id", g.quotaID)
		return err
	}

	if compErr := s.compensate(ctx, g); compErr != nil {
		log.ErrorContext(ctx, "compensation incomplete", "subevent_id", g.subEventID, "quota_id", g.quotaID, "err", compErr)
	} else {
		log.InfoContext(ctx, "vendor resources rolled back", "subevent_id", g.subEventID, "quota_id", g.quotaID)
	}
	s.publish(ctx, domain.SessionLifecycleEvent{
		Type:       domain.SessionCompensated,
		EventID:    session.EventID,
		Name:       session.Name,
		SubEventID: g.subEventID,
		QuotaID:    g.quotaID,
		CreatorID:  session.CreatorID,
		OccurredAt: s.now(),
	})
	return err
}

// compensate deletes the quota (if any) and then the sub-event. Both deletes are attempted
// even if the first one fails.
func (s *sessionCreationService) compensate(ctx context.Context, g *saga) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	var errs []error
	if g.quotaID != 0 {
		err := s.ticketing.DeleteQuota(ctx, g.slug, g.quotaID)
		g.record(domain.StepDeleteQuota, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("delete quota %d: %w", g.quotaID, err))
		}
	}
	err := s.ticketing.DeleteSubEvent(ctx, g.slug, g.subEventID)
	g.record(domain.StepDeleteSubEvent, err)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete subevent %d: %w", g.subEventID, err))
	}
	return errors.Join(errs...)
}

func (s *sessionCreationService) publish(ctx context.Context, event domain.SessionLifecycleEvent) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PublishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish lifecycle event", "type", event.Type, "err", err)
	}
}

func parseTicketAmount(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: ticket amount must be a positive integer", domain.ErrInvalidInput)
	}
	return n, nil
}
