package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"conferencesessions/internal/delivery/http/helpers"
	"conferencesessions/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// decodeData decodes the envelope and unmarshals its data into dest.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.Nil(t, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) *helpers.APIError {
	t.Helper()
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.NotNil(t, env.Error)
	return env.Error
}

type fakeCreator struct {
	result  *domain.SessionCreationResult
	err     error
	lastReq domain.CreateSessionRequest
}

func (f *fakeCreator) DraftDefaults(ctx context.Context, eventID int64) (*domain.SessionDraft, error) {
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewSessionDraft(&domain.Event{ID: eventID, Slug: "zk-week", ItemID: 7}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)), nil
}

func (f *fakeCreator) CreateSession(ctx context.Context, req domain.CreateSessionRequest) (*domain.SessionCreationResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSessionService struct {
	stored   *domain.Session
	storeErr error
	detail   *domain.SessionDetail
	getErr   error
	viewerID string
	sessions []*domain.Session
	total    int
	page     domain.PaginationParams
	days     []*domain.CalendarDay
}

func (f *fakeSessionService) StoreSession(ctx context.Context, creatorID string, s *domain.Session) error {
	f.stored = s
	return f.storeErr
}

func (f *fakeSessionService) GetSession(ctx context.Context, viewerID string, id int64) (*domain.SessionDetail, error) {
	f.viewerID = viewerID
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.detail, nil
}

func (f *fakeSessionService) ListEventSessions(ctx context.Context, eventID int64, page domain.PaginationParams) ([]*domain.Session, int, error) {
	f.page = page
	return f.sessions, f.total, nil
}

func (f *fakeSessionService) Calendar(ctx context.Context, eventID int64) ([]*domain.CalendarDay, error) {
	if eventID != 42 {
		return nil, domain.ErrNotFound
	}
	return f.days, nil
}

type fakeRSVPService struct {
	rsvps map[int64]*domain.RSVP
}

func (f *fakeRSVPService) Create(ctx context.Context, userID string, sessionID int64) (*domain.RSVP, error) {
	if sessionID != 7 {
		return nil, domain.ErrNotFound
	}
	r := &domain.RSVP{ID: 1, UserID: userID, SessionID: sessionID}
	f.rsvps[r.ID] = r
	return r, nil
}

func (f *fakeRSVPService) Delete(ctx context.Context, userID string, rsvpID int64) (bool, error) {
	r, ok := f.rsvps[rsvpID]
	if !ok {
		return false, nil
	}
	if r.UserID != userID {
		return false, domain.ErrForbidden
	}
	delete(f.rsvps, rsvpID)
	return true, nil
}

func (f *fakeRSVPService) ViewerRSVP(ctx context.Context, userID string, sessionID int64) (int64, error) {
	for _, r := range f.rsvps {
		if r.UserID == userID && r.SessionID == sessionID {
			return r.ID, nil
		}
	}
	return 0, nil
}

func (f *fakeRSVPService) CheckInCode(ctx context.Context, userID string, rsvpID int64) ([]byte, error) {
	r, ok := f.rsvps[rsvpID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return []byte("\x89PNG"), nil
}

// CheckIn accepts the token "badge-<id>" and lets only "org" scan.
func (f *fakeRSVPService) CheckIn(ctx context.Context, scannerID, token string) (*domain.RSVP, error) {
	for id, r := range f.rsvps {
		if token == fmt.Sprintf("badge-%d", id) {
			if scannerID != "org" {
				return nil, domain.ErrForbidden
			}
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown badge", domain.ErrInvalidInput)
}
