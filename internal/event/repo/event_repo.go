package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/caretrack/service-auth-go/internal/event/entity"
	"github.com/caretrack/service-auth-go/pkg/utilities"
)

// EventRepo provides data access for the events table using sqlx.
type EventRepo struct {
	db *sqlx.DB
}

func NewEventRepo(db *sqlx.DB) *EventRepo { return &EventRepo{db: db} }

// EnsureTable creates the events table if not exists (idempotent).
func (r *EventRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS events (
  id BIGINT PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id),
  title TEXT NOT NULL,
  event_date DATE NOT NULL,
  event_time TIME NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Append inserts one immutable event row. The ID is an app-generated
// snowflake, so equal (event_date, event_time) pairs keep insertion order
// when id breaks the tie.
func (r *EventRepo) Append(ctx context.Context, userID int64, title string, date time.Time, timeOfDay string) (int64, error) {
	id, err := utilities.NewSnowflakeID()
	if err != nil {
		return 0, fmt.Errorf("generate event id: %w", err)
	}
	const q = `INSERT INTO events (id, user_id, title, event_date, event_time) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, q, id, userID, title, date, timeOfDay); err != nil {
		return 0, err
	}
	return id, nil
}

// ListFor returns all events for a user ordered by (event_date, event_time)
// ascending. Empty slice, not an error, when there are none.
func (r *EventRepo) ListFor(ctx context.Context, userID int64) ([]entity.Event, error) {
	const q = `SELECT id, user_id, title, event_date, event_time, created_at
		FROM events WHERE user_id=$1
		ORDER BY event_date ASC, event_time ASC, id ASC`
	events := []entity.Event{}
	if err := r.db.SelectContext(ctx, &events, q, userID); err != nil {
		return nil, err
	}
	return events, nil
}
