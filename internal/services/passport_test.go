package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"conferencesessions/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const participantUUID = "c7d2e0a4-5b1f-4f3e-9a6b-2f1d3c4b5a69"

type fakeProofRequests struct {
	states map[string]time.Time
}

func (f *fakeProofRequests) Create(ctx context.Context, stateHash string, expiresAt time.Time) error {
	f.states[stateHash] = expiresAt
	return nil
}

func (f *fakeProofRequests) Consume(ctx context.Context, stateHash string) (bool, error) {
	exp, ok := f.states[stateHash]
	if !ok || time.Now().After(exp) {
		return false, nil
	}
	delete(f.states, stateHash)
	return true, nil
}

// fakeDecoder treats the encoded proof as the signed message.
type fakeDecoder struct {
	commitment string
}

func (f fakeDecoder) Decode(encoded string) (*domain.SignatureClaim, error) {
	if encoded == "garbage" {
		return nil, errors.New("bad proof")
	}
	return &domain.SignatureClaim{IdentityCommitment: f.commitment, SignedMessage: encoded}, nil
}

// fakeVerifier stands in for the passport verify endpoint.
type fakeVerifier struct {
	err   error
	calls int
}

func (f *fakeVerifier) Verify(ctx context.Context, encoded string) error {
	f.calls++
	return f.err
}

type fakeParticipants struct {
	byUUID map[string]*domain.Participant
}

func (f *fakeParticipants) FetchParticipant(ctx context.Context, id string) (*domain.Participant, error) {
	if p, ok := f.byUUID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

type passportFixture struct {
	users    *fakeUserRepo
	requests *fakeProofRequests
	issuer   *fakeTokenIssuer
	verifier *fakeVerifier
	svc      domain.PassportService
}

func newPassportFixture(commitment string) *passportFixture {
	users := newFakeUserRepo()
	f := &passportFixture{
		users:    users,
		requests: &fakeProofRequests{states: make(map[string]time.Time)},
		issuer:   &fakeTokenIssuer{},
		verifier: &fakeVerifier{},
	}
	participants := &fakeParticipants{byUUID: map[string]*domain.Participant{
		participantUUID: {UUID: participantUUID, Commitment: "commit-1", Email: "Alice@Example.com", Name: "Alice"},
	}}
	f.svc = NewPassportService(users, &fakeRoleRepo{users: users}, f.requests, fakeDecoder{commitment: commitment}, f.verifier, participants, f.issuer, discardLogger(), PassportConfig{
		AllowedOrigins: []string{"https://zuzalu.city/"},
		RequestTTL:     time.Minute,
		TokenExpiry:    time.Hour,
		BuildURLs: func(state string) (string, string, error) {
			return "https://passport/#/prove?state=" + state, "https://app/popup?state=" + state, nil
		},
	})
	return f
}

func TestPassportService_RequestProof(t *testing.T) {
	f := newPassportFixture("commit-1")

	req, err := f.svc.RequestProof(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, req.State)
	assert.Contains(t, req.ProofURL, req.State)
	assert.Contains(t, req.PopupURL, req.State)
	assert.Contains(t, f.requests.states, hashState(req.State))
	assert.NotContains(t, f.requests.states, req.State, "only the hash is stored")
}

func TestPassportService_LoginCreatesAttendee(t *testing.T) {
	ctx := context.Background()
	f := newPassportFixture("commit-1")
	req, err := f.svc.RequestProof(ctx)
	require.NoError(t, err)

	proof := domain.LoginMessage(participantUUID, req.State)
	token, user, err := f.svc.Login(ctx, "https://zuzalu.city", req.State, proof)
	require.NoError(t, err)
	assert.Equal(t, 1, f.verifier.calls)
	assert.Equal(t, "token-"+user.ID, token)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, participantUUID, user.PassportUUID)
	assert.Equal(t, []string{domain.RoleAttendee}, f.issuer.roles)

	_, _, err = f.svc.Login(ctx, "https://zuzalu.city", req.State, proof)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), "a state is single use")
}

func TestPassportService_LoginLinksExistingEmailAccount(t *testing.T) {
	ctx := context.Background()
	f := newPassportFixture("commit-1")
	f.users.put(&domain.User{ID: "org-1", Email: "alice@example.com"})
	f.users.roles["org-1"] = []string{"role-organizer"}
	req, err := f.svc.RequestProof(ctx)
	require.NoError(t, err)

	_, user, err := f.svc.Login(ctx, "https://zuzalu.city", req.State, domain.LoginMessage(participantUUID, req.State))
	require.NoError(t, err)
	assert.Equal(t, "org-1", user.ID)
	assert.Equal(t, participantUUID, f.users.byID["org-1"].PassportUUID)
	assert.Equal(t, []string{domain.RoleOrganizer}, f.issuer.roles)
}

func TestPassportService_LoginRejections(t *testing.T) {
	// {state} in proof is replaced with the state issued for the test.
	signed := participantUUID + ":{state}"
	tests := []struct {
		name       string
		commitment string
		origin     string
		state      string
		proof      string
		verifyErr  error
		want       error
	}{
		{"origin not allowed", "commit-1", "https://evil.example", "", signed, nil, domain.ErrForbidden},
		{"unknown state", "commit-1", "https://zuzalu.city", "never-issued", signed, nil, domain.ErrUnauthorized},
		{"undecodable proof", "commit-1", "https://zuzalu.city", "", "garbage", nil, domain.ErrUnauthorized},
		{"bogus proof", "commit-1", "https://zuzalu.city", "", signed, domain.ErrProofRejected, domain.ErrUnauthorized},
		{"verifier unavailable", "commit-1", "https://zuzalu.city", "", signed, errors.New("connection refused"), domain.ErrUnauthorized},
		{"message without state", "commit-1", "https://zuzalu.city", "", participantUUID, nil, domain.ErrUnauthorized},
		{"message signed for another request", "commit-1", "https://zuzalu.city", "", participantUUID + ":other-state", nil, domain.ErrUnauthorized},
		{"signed message not a uuid", "commit-1", "https://zuzalu.city", "", "hello:{state}", nil, domain.ErrUnauthorized},
		{"unknown participant", "commit-1", "https://zuzalu.city", "", "00000000-0000-4000-8000-000000000000:{state}", nil, domain.ErrUnauthorized},
		{"commitment mismatch", "someone-else", "https://zuzalu.city", "", signed, nil, domain.ErrUnauthorized},
		{"missing proof", "commit-1", "https://zuzalu.city", "", "", nil, domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newPassportFixture(tt.commitment)
			f.verifier.err = tt.verifyErr
			state := tt.state
			if state == "" {
				req, err := f.svc.RequestProof(ctx)
				require.NoError(t, err)
				state = req.State
			}

			token, user, err := f.svc.Login(ctx, tt.origin, state, strings.ReplaceAll(tt.proof, "{state}", state))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, token)
			assert.Nil(t, user)
			assert.Empty(t, f.users.byID)
			assert.Empty(t, f.issuer.roles)
		})
	}
}

// A proof intercepted from one login cannot open a session for a request it was not signed for.
func TestPassportService_LoginRejectsReplayedProof(t *testing.T) {
	ctx := context.Background()
	f := newPassportFixture("commit-1")
	first, err := f.svc.RequestProof(ctx)
	require.NoError(t, err)
	second, err := f.svc.RequestProof(ctx)
	require.NoError(t, err)

	proof := domain.LoginMessage(participantUUID, first.State)
	_, _, err = f.svc.Login(ctx, "https://zuzalu.city", second.State, proof)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), "got %v", err)
	assert.Empty(t, f.users.byID)
}
