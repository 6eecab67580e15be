package entity

import (
	"time"

	"github.com/lib/pq"
)

// Profile is the one-time "complete registration" record plus the adherence
// fields that login maintains. It owns a 0-or-1 relationship to a user; the
// row is created by the completion step, not together with the account.
type Profile struct {
	UserID                int64          `db:"user_id" json:"user_id"`
	FirstName             string         `db:"first_name" json:"first_name"`
	LastName              string         `db:"last_name" json:"last_name"`
	Age                   int            `db:"age" json:"age"`
	Gender                string         `db:"gender" json:"gender"`
	Diagnosis             string         `db:"diagnosis" json:"diagnosis"`
	Medicine              string         `db:"medicine" json:"medicine"`
	RecommendedActivities pq.StringArray `db:"recommended_activities" json:"recommended_activities"`
	TreatmentStreak       int            `db:"treatment_streak" json:"treatment_streak"`
	LastLogin             *time.Time     `db:"last_login" json:"last_login"`
}
