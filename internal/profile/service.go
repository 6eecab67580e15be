package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/caretrack/service-auth-go/internal/profile/entity"
	profilerepo "github.com/caretrack/service-auth-go/internal/profile/repo"
)

var (
	ErrNotFound         = errors.New("profile not found")
	ErrAlreadyCompleted = errors.New("registration already completed")
	ErrInvalidProfile   = errors.New("invalid profile data")
)

// Store is the subset of the profile repository the service depends on.
type Store interface {
	Insert(ctx context.Context, p *entity.Profile) error
	Get(ctx context.Context, userID int64) (*entity.Profile, error)
	TouchLogin(ctx context.Context, userID int64, now time.Time) (*entity.Profile, bool, error)
}

// Service owns the one-time completion record and the login-derived
// adherence fields.
type Service struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewService(store Store, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{store: store, logger: logger}
}

// Complete inserts the demographic/medical record for a user. Callers must
// call this at most once per user; a repeat reports ErrAlreadyCompleted off
// the primary-key constraint.
func (s *Service) Complete(ctx context.Context, p *entity.Profile) error {
	if p.UserID == 0 || p.Age < 0 {
		return ErrInvalidProfile
	}
	if p.RecommendedActivities == nil {
		p.RecommendedActivities = []string{}
	}
	if err := s.store.Insert(ctx, p); err != nil {
		if errors.Is(err, profilerepo.ErrDuplicateProfile) {
			return ErrAlreadyCompleted
		}
		return err
	}
	return nil
}

// Get fetches the stored profile. A user who never completed registration
// gets ErrNotFound; the streak counter is never surfaced as null.
func (s *Service) Get(ctx context.Context, userID int64) (*entity.Profile, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// TouchLogin records a login at `now` and returns the profile carrying the
// updated streak. ErrNotFound means there is no profile row yet; the login
// itself still succeeds, there is just no streak state to maintain.
func (s *Service) TouchLogin(ctx context.Context, userID int64, now time.Time) (*entity.Profile, error) {
	p, skewed, err := s.store.TouchLogin(ctx, userID, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if skewed {
		s.logger.Warnw("login clock skew: stored last_login is in the future",
			"user_id", userID, "now", now)
	}
	return p, nil
}
