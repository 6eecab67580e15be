package token

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey struct{}

// UserIDFrom returns the authenticated user ID stored by RequireAuth.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok
}

// FromRequest extracts the bearer token from the Authorization header.
func FromRequest(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", ErrMissing
	}
	scheme, rest, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", ErrScheme
	}
	return strings.TrimSpace(rest), nil
}

// RequireAuth gates a handler behind token verification. Each failure mode
// keeps its own 401 message; the wrapped handler only runs with a verified
// identity in the request context.
func RequireAuth(svc *Service, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := FromRequest(r)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			userID, err := svc.Verify(tok)
			if err != nil {
				logger.Debugw("token rejected", "path", r.URL.Path, "err", err)
				writeAuthError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), contextKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	msg := ErrInvalid.Error()
	switch {
	case errors.Is(err, ErrMissing):
		msg = ErrMissing.Error()
	case errors.Is(err, ErrScheme):
		msg = ErrScheme.Error()
	case errors.Is(err, ErrExpired):
		msg = ErrExpired.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
