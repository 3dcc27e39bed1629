package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conferencesessions/internal/domain"

	"github.com/google/uuid"
)

// ProofURLBuilder returns the passport prove URL and the popup URL for a request state.
type ProofURLBuilder func(state string) (proofURL, popupURL string, err error)

// PassportConfig configures the identity-proof login.
type PassportConfig struct {
	AllowedOrigins []string
	RequestTTL     time.Duration
	TokenExpiry    time.Duration
	BuildURLs      ProofURLBuilder
}

type passportService struct {
	userRepo     domain.UserRepository
	roleRepo     domain.RoleRepository
	requestRepo  domain.ProofRequestRepository
	decoder      domain.ProofDecoder
	verifier     domain.ProofVerifier
	participants domain.ParticipantFetcher
	issuer       domain.TokenIssuer
	logger       *slog.Logger
	cfg          PassportConfig
	origins      map[string]struct{}
	now          func() time.Time
}

func NewPassportService(
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	requestRepo domain.ProofRequestRepository,
	decoder domain.ProofDecoder,
	verifier domain.ProofVerifier,
	participants domain.ParticipantFetcher,
	issuer domain.TokenIssuer,
	logger *slog.Logger,
	cfg PassportConfig,
) domain.PassportService {
	if cfg.RequestTTL <= 0 {
		cfg.RequestTTL = 10 * time.Minute
	}
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[normalizeOrigin(o)] = struct{}{}
	}
	return &passportService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		requestRepo:  requestRepo,
		decoder:      decoder,
		verifier:     verifier,
		participants: participants,
		issuer:       issuer,
		logger:       logger,
		cfg:          cfg,
		origins:      origins,
		now:          time.Now,
	}
}

// RequestProof starts a login: it stores a fresh single-use state and returns the URLs the
// client opens to ask the passport for a proof.
func (s *passportService) RequestProof(ctx context.Context) (*domain.ProofRequest, error) {
	state := uuid.NewString()
	expiresAt := s.now().Add(s.cfg.RequestTTL)
	if err := s.requestRepo.Create(ctx, hashState(state), expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store proof request: %w", err)
	}
	req := &domain.ProofRequest{State: state, ExpiresAt: expiresAt}
	if s.cfg.BuildURLs != nil {
		proofURL, popupURL, err := s.cfg.BuildURLs(state)
		if err != nil {
			return nil, fmt.Errorf("failed to build proof urls: %w", err)
		}
		req.ProofURL = proofURL
		req.PopupURL = popupURL
	}
	return req, nil
}

// Login verifies the proof and returns a token for the participant it identifies. The proof must
// sign LoginMessage(participant uuid, state). Apart from a disallowed origin, every rejection is
// ErrUnauthorized.
func (s *passportService) Login(ctx context.Context, origin, state, encodedProof string) (string, *domain.User, error) {
	if _, ok := s.origins[normalizeOrigin(origin)]; !ok {
		return "", nil, fmt.Errorf("%w: origin %q is not allowed", domain.ErrForbidden, origin)
	}
	if state == "" || encodedProof == "" {
		return "", nil, fmt.Errorf("%w: missing state or proof", domain.ErrUnauthorized)
	}

	consumed, err := s.requestRepo.Consume(ctx, hashState(state))
	if err != nil {
		return "", nil, fmt.Errorf("failed to consume proof request: %w", err)
	}
	if !consumed {
		return "", nil, fmt.Errorf("%w: unknown or expired state", domain.ErrUnauthorized)
	}

	claim, err := s.decoder.Decode(encodedProof)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if err := s.verifier.Verify(ctx, encodedProof); err != nil {
		s.logger.WarnContext(ctx, "proof verification failed", "err", err)
		return "", nil, fmt.Errorf("%w: proof verification failed", domain.ErrUnauthorized)
	}

	signedUUID, signedState, ok := domain.ParseLoginMessage(claim.SignedMessage)
	if !ok {
		return "", nil, fmt.Errorf("%w: signed message is not a login message", domain.ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(signedState), []byte(state)) != 1 {
		return "", nil, fmt.Errorf("%w: proof was signed for another request", domain.ErrUnauthorized)
	}
	participantID, err := uuid.Parse(signedUUID)
	if err != nil {
		return "", nil, fmt.Errorf("%w: signed message is not a participant id", domain.ErrUnauthorized)
	}

	participant, err := s.participants.FetchParticipant(ctx, participantID.String())
	if err != nil {
		s.logger.WarnContext(ctx, "participant lookup failed", "uuid", participantID.String(), "err", err)
		return "", nil, fmt.Errorf("%w: participant lookup failed", domain.ErrUnauthorized)
	}
	if participant.Commitment == "" || participant.Commitment != claim.IdentityCommitment {
		return "", nil, fmt.Errorf("%w: identity commitment mismatch", domain.ErrUnauthorized)
	}

	user, err := s.upsertUser(ctx, participantID.String(), participant)
	if err != nil {
		return "", nil, err
	}
	token, err := issueToken(ctx, s.roleRepo, s.issuer, user, s.cfg.TokenExpiry)
	if err != nil {
		return "", nil, err
	}
	s.logger.InfoContext(ctx, "passport login", "user_id", user.ID)
	return token, user, nil
}

// upsertUser finds the account for the participant by passport id, then by email, and creates
// one when neither matches.
func (s *passportService) upsertUser(ctx context.Context, passportUUID string, p *domain.Participant) (*domain.User, error) {
	user, err := s.userRepo.GetByPassportUUID(ctx, passportUUID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get user by passport: %w", err)
	}

	email := strings.TrimSpace(strings.ToLower(p.Email))
	if email != "" {
		user, err = s.userRepo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			if err := s.userRepo.LinkPassport(ctx, user.ID, passportUUID, p.Commitment); err != nil {
				return nil, fmt.Errorf("link passport: %w", err)
			}
			user.PassportUUID = passportUUID
			user.IdentityCommitment = p.Commitment
			return user, nil
		case !errors.Is(err, domain.ErrUserNotFound):
			return nil, fmt.Errorf("get user by email: %w", err)
		}
	}

	now := s.now()
	user = domain.NewUser(email, p.Name, now, now)
	user.PassportUUID = passportUUID
	user.IdentityCommitment = p.Commitment
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := assignRole(ctx, s.userRepo, s.roleRepo, user.ID, domain.RoleAttendee); err != nil {
		return nil, err
	}
	return user, nil
}

func hashState(state string) string {
	h := sha256.Sum256([]byte(state))
	return hex.EncodeToString(h[:])
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}
