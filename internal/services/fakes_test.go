package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"conferencesessions/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// callLog records external calls in order across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[int64]*domain.Event
	nextID int64
	err    error // if set, Create returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[int64]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = f.nextID
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeSessionRepo is an in-memory SessionRepository for tests.
type fakeSessionRepo struct {
	log    *callLog
	byID   map[int64]*domain.Session
	nextID int64
	err    error // if set, Create returns this error
}

func newFakeSessionRepo(log *callLog) *fakeSessionRepo {
	return &fakeSessionRepo{log: log, byID: make(map[int64]*domain.Session), nextID: 100}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if f.log != nil {
		f.log.add("insert_session(%s)", s.Name)
	}
	if f.err != nil {
		return f.err
	}
	s.ID = f.nextID
	f.nextID++
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSessionRepo) ListByEventID(ctx context.Context, eventID int64, page domain.PaginationParams) ([]*domain.Session, int, error) {
	var out []*domain.Session
	for _, s := range f.byID {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, len(out), nil
}

// fakeTicketing records vendor calls and hands out sequential ids.
type fakeTicketing struct {
	log            *callLog
	subEventErr    error
	quotaErr       error
	deleteQuotaErr error
	subEvents      []domain.SubEventRequest
	quotas         []domain.QuotaRequest
	nextSubEventID int64
	nextQuotaID    int64
}

func newFakeTicketing(log *callLog) *fakeTicketing {
	return &fakeTicketing{log: log, nextSubEventID: 501, nextQuotaID: 901}
}

func (f *fakeTicketing) CreateEvent(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	f.log.add("create_event")
	return payload, nil
}

func (f *fakeTicketing) CreateSubEvent(ctx context.Context, req domain.SubEventRequest) (json.RawMessage, int64, error) {
	f.log.add("create_subevent(%s,%d)", req.Slug, req.ItemID)
	if f.subEventErr != nil {
		return nil, 0, f.subEventErr
	}
	f.subEvents = append(f.subEvents, req)
	id := f.nextSubEventID
	f.nextSubEventID++
	return json.RawMessage(fmt.Sprintf(`{"id":%d}`, id)), id, nil
}

func (f *fakeTicketing) CreateQuota(ctx context.Context, req domain.QuotaRequest) (json.RawMessage, int64, error) {
	f.log.add("create_quota(%d,%d)", req.TicketAmount, req.SubEventID)
	if f.quotaErr != nil {
		return nil, 0, f.quotaErr
	}
	f.quotas = append(f.quotas, req)
	id := f.nextQuotaID
	f.nextQuotaID++
	return json.RawMessage(fmt.Sprintf(`{"id":%d}`, id)), id, nil
}

func (f *fakeTicketing) DeleteSubEvent(ctx context.Context, slug string, id int64) error {
	f.log.add("delete_subevent(%d)", id)
	return nil
}

func (f *fakeTicketing) DeleteQuota(ctx context.Context, slug string, id int64) error {
	f.log.add("delete_quota(%d)", id)
	return f.deleteQuotaErr
}

// fakeIdempotency is an in-memory IdempotencyStore.
type fakeIdempotency struct {
	records  map[string]int64
	released []string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{records: make(map[string]int64)}
}

func (f *fakeIdempotency) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, *domain.IdempotencyRecord, error) {
	if id, ok := f.records[key]; ok {
		return false, &domain.IdempotencyRecord{SessionID: id}, nil
	}
	f.records[key] = 0
	return true, nil, nil
}

func (f *fakeIdempotency) Complete(ctx context.Context, key string, sessionID int64, ttl time.Duration) error {
	f.records[key] = sessionID
	return nil
}

func (f *fakeIdempotency) Release(ctx context.Context, key string) error {
	delete(f.records, key)
	f.released = append(f.released, key)
	return nil
}

// fakePublisher collects lifecycle events.
type fakePublisher struct {
	events []domain.SessionLifecycleEvent
	err    error
	// block makes Publish wait for the context, like a broker that never answers.
	block       bool
	hadDeadline bool
}

func (f *fakePublisher) Publish(ctx context.Context, e domain.SessionLifecycleEvent) error {
	_, f.hadDeadline = ctx.Deadline()
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.events = append(f.events, e)
	return f.err
}

// fakeRSVPRepo is an in-memory RSVPRepository enforcing one RSVP per user and session.
type fakeRSVPRepo struct {
	byID   map[int64]*domain.RSVP
	nextID int64
}

func newFakeRSVPRepo() *fakeRSVPRepo {
	return &fakeRSVPRepo{byID: make(map[int64]*domain.RSVP), nextID: 1}
}

func (f *fakeRSVPRepo) Create(ctx context.Context, r *domain.RSVP) (bool, error) {
	for _, existing := range f.byID {
		if existing.SessionID == r.SessionID && existing.UserID == r.UserID {
			*r = *existing
			return false, nil
		}
	}
	r.ID = f.nextID
	f.nextID++
	cp := *r
	f.byID[r.ID] = &cp
	return true, nil
}

func (f *fakeRSVPRepo) GetByID(ctx context.Context, id int64) (*domain.RSVP, error) {
	if r, ok := f.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) GetBySessionAndUser(ctx context.Context, sessionID int64, userID string) (*domain.RSVP, error) {
	for _, r := range f.byID {
		if r.SessionID == sessionID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	n := 0
	for _, r := range f.byID {
		if r.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRSVPRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

// fakeFavoriteRepo is an in-memory FavoriteRepository backed by a session repo.
type fakeFavoriteRepo struct {
	sessions *fakeSessionRepo
	set      map[string]map[int64]bool
}

func newFakeFavoriteRepo(sessions *fakeSessionRepo) *fakeFavoriteRepo {
	return &fakeFavoriteRepo{sessions: sessions, set: make(map[string]map[int64]bool)}
}

func (f *fakeFavoriteRepo) Add(ctx context.Context, userID string, sessionID int64) error {
	if _, ok := f.sessions.byID[sessionID]; !ok {
		return domain.ErrNotFound
	}
	if f.set[userID] == nil {
		f.set[userID] = make(map[int64]bool)
	}
	f.set[userID][sessionID] = true
	return nil
}

func (f *fakeFavoriteRepo) Remove(ctx context.Context, userID string, sessionID int64) (bool, error) {
	if !f.set[userID][sessionID] {
		return false, nil
	}
	delete(f.set[userID], sessionID)
	return true, nil
}

func (f *fakeFavoriteRepo) Exists(ctx context.Context, userID string, sessionID int64) (bool, error) {
	return f.set[userID][sessionID], nil
}

func (f *fakeFavoriteRepo) ListSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	var out []*domain.Session
	for id := range f.set[userID] {
		out = append(out, f.sessions.byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID       map[string]*domain.User
	byEmail    map[string]*domain.User
	byPassport map[string]*domain.User
	roles      map[string][]string
	nextID     int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:       make(map[string]*domain.User),
		byEmail:    make(map[string]*domain.User),
		byPassport: make(map[string]*domain.User),
		roles:      make(map[string][]string),
		nextID:     1,
	}
}

func (f *fakeUserRepo) put(u *domain.User) {
	f.byID[u.ID] = u
	if u.Email != "" {
		f.byEmail[u.Email] = u
	}
	if u.PassportUUID != "" {
		f.byPassport[u.PassportUUID] = u
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.Email != "" {
		if _, ok := f.byEmail[u.Email]; ok {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.put(u)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByPassportUUID(ctx context.Context, passportUUID string) (*domain.User, error) {
	if u, ok := f.byPassport[passportUUID]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) LinkPassport(ctx context.Context, userID, passportUUID, commitment string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if _, taken := f.byPassport[passportUUID]; taken {
		return domain.ErrConflict
	}
	u.PassportUUID = passportUUID
	u.IdentityCommitment = commitment
	f.byPassport[passportUUID] = u
	return nil
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	f.roles[userID] = append(f.roles[userID], roleID)
	return nil
}

// fakeRoleRepo resolves role codes to ids and reads assignments back from a fakeUserRepo.
type fakeRoleRepo struct {
	users *fakeUserRepo
}

func (f *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	switch code {
	case domain.RoleOrganizer, domain.RoleAttendee:
		return &domain.Role{ID: "role-" + code, Code: code}, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Role, error) {
	var out []*domain.Role
	for _, id := range f.users.roles[userID] {
		out = append(out, &domain.Role{ID: id, Code: id[len("role-"):]})
	}
	return out, nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}
func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer and remembers the last roles it saw.
type fakeTokenIssuer struct {
	roles []string
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	f.roles = roles
	return "token-" + userID, nil
}

// fakeEmailService records confirmations.
type fakeEmailService struct {
	sent []*domain.RSVPConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPConfirmationEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}

type fakeEncoder struct{}

func (fakeEncoder) Encode(r *domain.RSVP) ([]byte, error) {
	return []byte(fmt.Sprintf("png-%d", r.ID)), nil
}

// Verify accepts tokens of the form "rsvp:<id>:<session>:<user>".
func (fakeEncoder) Verify(token string) (*domain.RSVP, error) {
	var r domain.RSVP
	if _, err := fmt.Sscanf(token, "rsvp:%d:%d:%s", &r.ID, &r.SessionID, &r.UserID); err != nil {
		return nil, errors.New("bad badge")
	}
	return &r, nil
}
