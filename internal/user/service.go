package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/caretrack/service-auth-go/internal/user/entity"
	userrepo "github.com/caretrack/service-auth-go/internal/user/repo"
)

// PasswordHasher defines the minimal hashing interface (abstract so the
// algorithm can be swapped without touching the service).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher hashes with a per-call random salt. Verify is the bcrypt
// constant-time comparison.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Store is the subset of the user repository the service depends on.
type Store interface {
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

var (
	ErrUsernameTaken  = errors.New("username already exists")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrEmptyInput     = errors.New("username and password required")
)

// Service orchestrates account creation and password authentication.
type Service struct {
	store  Store
	hasher PasswordHasher
}

func NewService(store Store, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &Service{store: store, hasher: hasher}
}

// Register hashes the password and persists a new account. Duplicate
// usernames surface as ErrUsernameTaken; the DB constraint does the
// detection so there is no check-then-act window.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, ErrEmptyInput
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}
	id, err := s.store.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, userrepo.ErrDuplicateUsername) {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}
	return id, nil
}

// Authenticate verifies a username/password pair and returns the account ID.
// A missing account and a wrong password both report ErrBadCredentials so
// responses cannot be used to enumerate usernames.
func (s *Service) Authenticate(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, ErrBadCredentials
	}
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrBadCredentials
		}
		return 0, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return 0, ErrBadCredentials
	}
	return u.ID, nil
}
