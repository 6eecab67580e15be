package entity

import "time"

// Event is one immutable row on a user's timeline. Rows are never updated
// or deleted; the log only grows.
type Event struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Title     string    `db:"title"`
	EventDate time.Time `db:"event_date"`
	EventTime string    `db:"event_time"`
	CreatedAt time.Time `db:"created_at"`
}
