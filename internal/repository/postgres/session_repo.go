package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"conferencesessions/internal/domain"

	"github.com/lib/pq"
)

const sessionColumns = `s.id, s.name, s.description, s.start_date, s.end_date, s.start_time, s.end_time,
		s.location, s.tags, s.organizers, s.info, s.event_id, s.has_ticket, s.event_type, s.level,
		s.format, s.equipment, s.track, s.team_members, s.subevent_id, s.quota_id, s.event_slug,
		s.event_item_id, s.creator_uuid, s.created_at`

type SessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &SessionRepository{
		DB: db,
	}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	members := s.TeamMembers
	if members == nil {
		members = []domain.TeamMember{}
	}
	teamJSON, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("encode team members: %w", err)
	}
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	organizers := s.Organizers
	if organizers == nil {
		organizers = []string{}
	}
	query := `
		INSERT INTO sessions (name, description, start_date, end_date, start_time, end_time, location,
			tags, organizers, info, event_id, has_ticket, event_type, level, format, equipment, track,
			team_members, subevent_id, quota_id, event_slug, event_item_id, creator_uuid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		s.Name, s.Description, s.StartDate, s.EndDate, s.StartTime, s.EndTime, s.Location,
		pq.Array(tags), pq.Array(organizers), s.Info, s.EventID, s.HasTicket, s.EventType, s.Level,
		s.Format, s.Equipment, s.Track, teamJSON, nullInt64(s.SubEventID), nullInt64(s.QuotaID),
		s.EventSlug, s.EventItemID, s.CreatorID, s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return fmt.Errorf("%w: unknown event or creator", domain.ErrInvalidInput)
		}
		return err
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s WHERE s.id = $1`
	s, err := scanSession(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListByEventID returns the event's sessions ordered by start date and time. A zero page
// size returns every session.
func (r *SessionRepository) ListByEventID(ctx context.Context, eventID int64, page domain.PaginationParams) ([]*domain.Session, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	var limit any
	if page.Limit() > 0 {
		limit = page.Limit()
	}
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions s
		WHERE s.event_id = $1
		ORDER BY s.start_date, s.start_time, s.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	s := &domain.Session{}
	var teamJSON []byte
	var subEventID, quotaID sql.NullInt64
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.StartDate, &s.EndDate, &s.StartTime, &s.EndTime,
		&s.Location, pq.Array(&s.Tags), pq.Array(&s.Organizers), &s.Info, &s.EventID, &s.HasTicket,
		&s.EventType, &s.Level, &s.Format, &s.Equipment, &s.Track, &teamJSON, &subEventID, &quotaID,
		&s.EventSlug, &s.EventItemID, &s.CreatorID, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.TeamMembers = []domain.TeamMember{}
	if len(teamJSON) > 0 {
		if err := json.Unmarshal(teamJSON, &s.TeamMembers); err != nil {
			return nil, fmt.Errorf("decode team members: %w", err)
		}
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if s.Organizers == nil {
		s.Organizers = []string{}
	}
	if subEventID.Valid {
		s.SubEventID = &subEventID.Int64
	}
	if quotaID.Valid {
		s.QuotaID = &quotaID.Int64
	}
	return s, nil
}

func collectSessions(rows *sql.Rows) ([]*domain.Session, error) {
	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
