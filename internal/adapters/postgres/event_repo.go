package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// attendeeBatchSize keeps each insert well under the 65535 bind parameter limit.
const attendeeBatchSize = 1000

var ErrEventMissing = errors.New("event row does not exist")

type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = `
	id, external_id, name, start_time, end_time, timezone,
	status, last_synced_at, created_at, updated_at
`

func (r *EventRepo) UpsertByExternalID(ctx context.Context, event *domain.Event) (uuid.UUID, error) {
	query := `
		INSERT INTO events (
			external_id, name, start_time, end_time, timezone,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			timezone = EXCLUDED.timezone,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING id
	`

	status := event.Status
	if status == "" {
		status = domain.EventStatusCreated
	}

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query,
		event.ExternalID,
		event.Name,
		nullTime(event.StartTime),
		nullTime(event.EndTime),
		event.Timezone,
		string(status),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert event: %w", err)
	}

	event.ID = id
	return id, nil
}

func (r *EventRepo) UpsertAttendees(ctx context.Context, eventID uuid.UUID, attendees []*domain.Attendee) error {
	for start := 0; start < len(attendees); start += attendeeBatchSize {
		end := min(start+attendeeBatchSize, len(attendees))
		if err := r.upsertAttendeeBatch(ctx, eventID, attendees[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *EventRepo) upsertAttendeeBatch(ctx context.Context, eventID uuid.UUID, batch []*domain.Attendee) error {
	values := []interface{}{}
	placeholders := []string{}

	const paramsPerAttendee = 4

	for i, a := range batch {
		base := i * paramsPerAttendee

		row := fmt.Sprintf("($%d, $%d, $%d, $%d, NOW(), NOW())", base+1, base+2, base+3, base+4)
		placeholders = append(placeholders, row)

		var registeredAt sql.NullTime
		if a.RegisteredAt != nil {
			registeredAt = sql.NullTime{Time: *a.RegisteredAt, Valid: true}
		}

		values = append(values, eventID, a.Email, a.Name, registeredAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO event_attendees (
			event_id,
			email,
			name,
			registered_at,
			created_at,
			updated_at
		)
		VALUES %s
		ON CONFLICT (event_id, email) DO UPDATE SET
			name = EXCLUDED.name,
			registered_at = EXCLUDED.registered_at,
			updated_at = NOW()
	`, strings.Join(placeholders, ","))

	if _, err := r.db.ExecContext(ctx, query, values...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: %s", ErrEventMissing, eventID)
		}
		return fmt.Errorf("failed to upsert attendee batch: %w", err)
	}

	return nil
}

// RemoveAttendeesNotIn drops attendees that no longer appear upstream. An
// empty keep list removes every attendee of the event.
func (r *EventRepo) RemoveAttendeesNotIn(ctx context.Context, eventID uuid.UUID, keep []string) error {
	query := `
		DELETE FROM event_attendees
		WHERE event_id = $1 AND NOT (email = ANY($2))
	`

	if keep == nil {
		keep = []string{}
	}

	if _, err := r.db.ExecContext(ctx, query, eventID, pq.Array(keep)); err != nil {
		return fmt.Errorf("failed to remove stale attendees: %w", err)
	}
	return nil
}

func (r *EventRepo) MarkSynced(ctx context.Context, eventID uuid.UUID) error {
	query := `
		UPDATE events
		SET last_synced_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event synced: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrEventMissing, eventID)
	}
	return nil
}

// ListRecent returns events ordered by the most recent sync first.
func (r *EventRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		ORDER BY COALESCE(last_synced_at, created_at) DESC
		LIMIT $1
	`
	return r.queryEvents(ctx, query, limit)
}

// ListUpcoming returns events that have not ended by now and were not cancelled.
func (r *EventRepo) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE end_time > $1 AND status <> 'cancelled'
		ORDER BY start_time
	`
	return r.queryEvents(ctx, query, now)
}

func (r *EventRepo) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (*domain.Event, error) {
	var (
		event        domain.Event
		status       string
		startTime    sql.NullTime
		endTime      sql.NullTime
		lastSyncedAt sql.NullTime
	)

	err := rows.Scan(
		&event.ID,
		&event.ExternalID,
		&event.Name,
		&startTime,
		&endTime,
		&event.Timezone,
		&status,
		&lastSyncedAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	event.Status = domain.EventStatus(status)
	event.StartTime = startTime.Time
	event.EndTime = endTime.Time
	if lastSyncedAt.Valid {
		t := lastSyncedAt.Time
		event.LastSyncedAt = &t
	}

	return &event, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
