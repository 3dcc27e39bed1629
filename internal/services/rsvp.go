package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conferencesessions/internal/domain"
)

type rsvpService struct {
	rsvpRepo       domain.RSVPRepository
	sessionRepo    domain.SessionRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	encoder        domain.CheckInEncoder
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRSVPService creates an RSVPService. emailService may be nil to skip confirmations.
func NewRSVPService(
	rsvpRepo domain.RSVPRepository,
	sessionRepo domain.SessionRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	encoder domain.CheckInEncoder,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RSVPService {
	return &rsvpService{
		rsvpRepo:       rsvpRepo,
		sessionRepo:    sessionRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		encoder:        encoder,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *rsvpService) Create(ctx context.Context, userID string, sessionID int64) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	rsvp := domain.NewRSVP(userID, sessionID, time.Now())
	created, err := s.rsvpRepo.Create(ctx, rsvp)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("create rsvp: %w", err)
	}
	if created {
		s.sendConfirmation(ctx, userID, session)
	}
	return rsvp, nil
}

func (s *rsvpService) sendConfirmation(ctx context.Context, userID string, session *domain.Session) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "rsvp confirmation skipped", "user_id", userID, "err", err)
		return
	}
	if user.Email == "" {
		return
	}
	err = s.emailService.SendRSVPConfirmation(ctx, &domain.RSVPConfirmationEmailData{
		Email:       user.Email,
		Name:        user.Name,
		SessionName: session.Name,
		Date:        session.StartDate.Format(domain.DateLayout),
		StartTime:   session.StartTime,
		Location:    session.Location,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "rsvp confirmation failed", "user_id", userID, "session_id", session.ID, "err", err)
	}
}

func (s *rsvpService) Delete(ctx context.Context, userID string, rsvpID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rsvp, err := s.owned(ctx, userID, rsvpID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	deleted, err := s.rsvpRepo.Delete(ctx, rsvp.ID)
	if err != nil {
		return false, fmt.Errorf("delete rsvp: %w", err)
	}
	return deleted, nil
}

func (s *rsvpService) ViewerRSVP(ctx context.Context, userID string, sessionID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rsvp, err := s.rsvpRepo.GetBySessionAndUser(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get rsvp: %w", err)
	}
	return rsvp.ID, nil
}

func (s *rsvpService) CheckInCode(ctx context.Context, userID string, rsvpID int64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rsvp, err := s.owned(ctx, userID, rsvpID)
	if err != nil {
		return nil, err
	}
	png, err := s.encoder.Encode(rsvp)
	if err != nil {
		return nil, fmt.Errorf("encode check-in code: %w", err)
	}
	return png, nil
}

func (s *rsvpService) CheckIn(ctx context.Context, scannerID, token string) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if scannerID == "" {
		return nil, domain.ErrUnauthorized
	}
	claimed, err := s.encoder.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	rsvp, err := s.rsvpRepo.GetByID(ctx, claimed.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get rsvp: %w", err)
	}
	if rsvp.UserID != claimed.UserID || rsvp.SessionID != claimed.SessionID {
		return nil, fmt.Errorf("%w: badge does not match the rsvp", domain.ErrInvalidInput)
	}
	session, err := s.sessionRepo.GetByID(ctx, rsvp.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.CreatorID != scannerID {
		return nil, domain.ErrForbidden
	}
	s.logger.InfoContext(ctx, "rsvp checked in", "rsvp_id", rsvp.ID, "session_id", rsvp.SessionID)
	return rsvp, nil
}

// owned loads the RSVP and checks it belongs to userID.
func (s *rsvpService) owned(ctx context.Context, userID string, rsvpID int64) (*domain.RSVP, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	rsvp, err := s.rsvpRepo.GetByID(ctx, rsvpID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get rsvp: %w", err)
	}
	if rsvp.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return rsvp, nil
}
