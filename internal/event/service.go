package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caretrack/service-auth-go/internal/event/entity"
)

var (
	ErrBadDate = errors.New("event_date must be YYYY-MM-DD")
	ErrBadTime = errors.New("event_time must be HH:MM")
)

// Store is the subset of the event repository the service depends on.
type Store interface {
	Append(ctx context.Context, userID int64, title string, date time.Time, timeOfDay string) (int64, error)
	ListFor(ctx context.Context, userID int64) ([]entity.Event, error)
}

// Service validates and appends timeline entries. Beyond well-formed date
// and time values no validation happens here; rows are immutable once in.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Log appends a generic event.
func (s *Service) Log(ctx context.Context, userID int64, title, date, timeOfDay string) (int64, error) {
	parsedDate, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	normalizedTime, err := NormalizeTime(timeOfDay)
	if err != nil {
		return 0, err
	}
	return s.store.Append(ctx, userID, title, parsedDate, normalizedTime)
}

// LogMedication appends a medication-taken event dated today.
func (s *Service) LogMedication(ctx context.Context, userID int64, medication, timeOfDay string) (int64, error) {
	normalizedTime, err := NormalizeTime(timeOfDay)
	if err != nil {
		return 0, err
	}
	today := s.now()
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	title := fmt.Sprintf("Took medication: %s", medication)
	return s.store.Append(ctx, userID, title, day, normalizedTime)
}

// ListFor returns the user's timeline in (event_date, event_time) order.
func (s *Service) ListFor(ctx context.Context, userID int64) ([]entity.Event, error) {
	return s.store.ListFor(ctx, userID)
}

// ParseDate accepts an ISO calendar date.
func ParseDate(date string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return parsed, nil
}

// NormalizeTime accepts HH:MM or HH:MM:SS and returns HH:MM:SS, the form
// the TIME column round-trips.
func NormalizeTime(timeOfDay string) (string, error) {
	if parsed, err := time.Parse("15:04", timeOfDay); err == nil {
		return parsed.Format("15:04:05"), nil
	}
	if parsed, err := time.Parse("15:04:05", timeOfDay); err == nil {
		return parsed.Format("15:04:05"), nil
	}
	return "", ErrBadTime
}
