package profile

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/caretrack/service-auth-go/internal/profile/entity"
	profilerepo "github.com/caretrack/service-auth-go/internal/profile/repo"
	"github.com/caretrack/service-auth-go/internal/profile/streak"
)

// fakeStore mimics the user_profiles table, including the repo's
// TouchLogin contract: apply the streak rule, report sql.ErrNoRows when the
// row does not exist.
type fakeStore struct {
	rows map[int64]*entity.Profile
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[int64]*entity.Profile{}}
}

func (f *fakeStore) Insert(_ context.Context, p *entity.Profile) error {
	if _, exists := f.rows[p.UserID]; exists {
		return profilerepo.ErrDuplicateProfile
	}
	stored := *p
	f.rows[p.UserID] = &stored
	return nil
}

func (f *fakeStore) Get(_ context.Context, userID int64) (*entity.Profile, error) {
	p, exists := f.rows[userID]
	if !exists {
		return nil, sql.ErrNoRows
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) TouchLogin(_ context.Context, userID int64, now time.Time) (*entity.Profile, bool, error) {
	p, exists := f.rows[userID]
	if !exists {
		return nil, false, sql.ErrNoRows
	}
	next, skewed := streak.Next(p.TreatmentStreak, p.LastLogin, now)
	p.TreatmentStreak = next
	p.LastLogin = &now
	out := *p
	return &out, skewed, nil
}

func day(d, hour int) time.Time {
	return time.Date(2025, 3, 10+d, hour, 0, 0, 0, time.UTC)
}

func TestGetMissingProfile(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	if _, err := svc.Get(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestCompleteTwice(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	ctx := context.Background()
	p := &entity.Profile{UserID: 1, FirstName: "Bob", Age: 55, Diagnosis: "hypertension", Medicine: "crestor"}
	if err := svc.Complete(ctx, p); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if err := svc.Complete(ctx, p); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second complete = %v, want ErrAlreadyCompleted", err)
	}
}

func TestCompleteValidation(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	ctx := context.Background()
	if err := svc.Complete(ctx, &entity.Profile{UserID: 0}); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("Complete(no user) = %v, want ErrInvalidProfile", err)
	}
	if err := svc.Complete(ctx, &entity.Profile{UserID: 1, Age: -3}); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("Complete(negative age) = %v, want ErrInvalidProfile", err)
	}
}

func TestCompleteNormalizesNilActivities(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	if err := svc.Complete(context.Background(), &entity.Profile{UserID: 1, Age: 40}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if store.rows[1].RecommendedActivities == nil {
		t.Fatal("recommended_activities stored as nil, want empty list")
	}
}

func TestTouchLoginBeforeCompletion(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	if _, err := svc.TouchLogin(context.Background(), 1, day(0, 9)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("TouchLogin(no profile) = %v, want ErrNotFound", err)
	}
}

func TestTouchLoginStreakSequence(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	if err := svc.Complete(ctx, &entity.Profile{UserID: 1, FirstName: "Bob", Age: 55}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	steps := []struct {
		now  time.Time
		want int
	}{
		{day(0, 9), 1},  // first login
		{day(0, 21), 1}, // same day, counter unchanged
		{day(1, 8), 2},  // consecutive day
		{day(3, 8), 1},  // day 2 skipped, reset
	}
	for _, step := range steps {
		p, err := svc.TouchLogin(ctx, 1, step.now)
		if err != nil {
			t.Fatalf("TouchLogin at %v: %v", step.now, err)
		}
		if p.TreatmentStreak != step.want {
			t.Fatalf("streak at %v = %d, want %d", step.now, p.TreatmentStreak, step.want)
		}
		if p.LastLogin == nil || !p.LastLogin.Equal(step.now) {
			t.Fatalf("last_login at %v = %v, want advanced to now", step.now, p.LastLogin)
		}
	}
}
