package token

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissing = errors.New("missing authorization header")
	ErrScheme  = errors.New("invalid auth scheme")
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("invalid token")
)

type Config struct {
	Secret string
	TTL    time.Duration
}

// ConfigFromEnv reads the signing secret and TTL from env vars.
// JWT_TTL_HOURS defaults to 24.
func ConfigFromEnv() Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "supersecretkey" // change for production
	}
	ttl := 24 * time.Hour
	if env := os.Getenv("JWT_TTL_HOURS"); env != "" {
		if hours, err := strconv.Atoi(env); err == nil && hours > 0 {
			ttl = time.Duration(hours) * time.Hour
		}
	}
	return Config{Secret: secret, TTL: ttl}
}

// Service issues and verifies HS256 session tokens. The secret is injected
// at construction; issue and verify always agree on algorithm and key.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(cfg Config) *Service {
	return &Service{secret: []byte(cfg.Secret), ttl: cfg.TTL}
}

// Issue signs a token whose subject is the stringified user ID and whose
// expiry is now + the fixed TTL. Validity is self-contained: nothing is
// persisted and nothing can revoke the token before it expires.
func (s *Service) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates signature and expiry, returning the numeric
// subject. The subject stays a string at the claim level and is converted
// to int64 only here.
func (s *Service) Verify(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrInvalid
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return userID, nil
}

// TTL reports the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }
