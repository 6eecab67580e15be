package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/caretrack/service-auth-go/internal/profile/entity"
	"github.com/caretrack/service-auth-go/internal/profile/streak"
)

var (
	// ErrDuplicateProfile is returned when the primary key on user_id
	// rejects a second completion insert.
	ErrDuplicateProfile = errors.New("duplicate profile")
)

// ProfileRepo provides data access for the user_profiles table using sqlx.
type ProfileRepo struct {
	db *sqlx.DB
}

func NewProfileRepo(db *sqlx.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// EnsureTable creates the user_profiles table if not exists (idempotent).
func (r *ProfileRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS user_profiles (
  user_id BIGINT PRIMARY KEY REFERENCES users(id),
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  age INT NOT NULL DEFAULT 0,
  gender TEXT NOT NULL DEFAULT '',
  diagnosis TEXT NOT NULL DEFAULT '',
  medicine TEXT NOT NULL DEFAULT '',
  recommended_activities TEXT[] NOT NULL DEFAULT '{}',
  treatment_streak INT NOT NULL DEFAULT 0,
  last_login TIMESTAMPTZ
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const profileColumns = `user_id, first_name, last_name, age, gender, diagnosis, medicine,
	recommended_activities, COALESCE(treatment_streak, 0) AS treatment_streak, last_login`

// Insert persists the completion record. A second insert for the same
// user_id violates the primary key and maps to ErrDuplicateProfile.
func (r *ProfileRepo) Insert(ctx context.Context, p *entity.Profile) error {
	const q = `INSERT INTO user_profiles
		(user_id, first_name, last_name, age, gender, diagnosis, medicine, recommended_activities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q,
		p.UserID, p.FirstName, p.LastName, p.Age, p.Gender, p.Diagnosis, p.Medicine,
		pq.Array([]string(p.RecommendedActivities)))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateProfile
		}
		return err
	}
	return nil
}

// Get fetches the stored profile or sql.ErrNoRows.
func (r *ProfileRepo) Get(ctx context.Context, userID int64) (*entity.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id=$1`
	var row entity.Profile
	if err := r.db.GetContext(ctx, &row, q, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

// TouchLogin applies the streak rule for a login at `now` inside one
// transaction with a row lock, so concurrent logins for the same user
// serialize instead of racing the read-modify-write. Returns the refreshed
// profile and whether the previous last_login lay in the future (clock
// skew). sql.ErrNoRows means the user has not completed registration yet.
func (r *ProfileRepo) TouchLogin(ctx context.Context, userID int64, now time.Time) (*entity.Profile, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin touch login: %w", err)
	}
	defer tx.Rollback()

	q := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id=$1 FOR UPDATE`
	var row entity.Profile
	if err := tx.GetContext(ctx, &row, q, userID); err != nil {
		return nil, false, err
	}

	next, skewed := streak.Next(row.TreatmentStreak, row.LastLogin, now)
	const upd = `UPDATE user_profiles SET treatment_streak=$2, last_login=$3 WHERE user_id=$1`
	if _, err := tx.ExecContext(ctx, upd, userID, next, now); err != nil {
		return nil, false, fmt.Errorf("update streak: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit touch login: %w", err)
	}

	row.TreatmentStreak = next
	row.LastLogin = &now
	return &row, skewed, nil
}
