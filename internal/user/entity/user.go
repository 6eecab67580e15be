package entity

import "time"

// User represents an account row in the `users` table. The password hash is
// kept out of every serialized form; it only travels between the repo and
// the credential service.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}
