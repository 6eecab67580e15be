package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/caretrack/service-auth-go/internal/profile"
	profileentity "github.com/caretrack/service-auth-go/internal/profile/entity"
	"github.com/caretrack/service-auth-go/internal/token"
)

// ProfileToucher is what login needs from the profile side: record the
// login, get back the refreshed profile, or report that none exists yet.
type ProfileToucher interface {
	TouchLogin(ctx context.Context, userID int64, now time.Time) (*profileentity.Profile, error)
}

// Handler exposes HTTP endpoints for account operations (register / login).
type Handler struct {
	svc      *Service
	tokens   *token.Service
	profiles ProfileToucher
	logger   *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *token.Service, profiles ProfileToucher, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, profiles: profiles, logger: logger}
}

// RegisterRequest request body for registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse carries the new account ID plus a session token so the
// client can proceed straight to completion.
type RegisterResponse struct {
	Message     string `json:"message"`
	UserID      int64  `json:"user_id"`
	AccessToken string `json:"access_token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	id, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrUsernameTaken.Error()})
		case errors.Is(err, ErrEmptyInput):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrEmptyInput.Error()})
		default:
			h.logger.Errorw("register failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
		}
		return
	}
	accessToken, err := h.tokens.Issue(id)
	if err != nil {
		h.logger.Errorw("issue token failed", "user_id", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
		return
	}
	h.writeJSON(w, http.StatusCreated, RegisterResponse{
		Message:     "User registered successfully",
		UserID:      id,
		AccessToken: accessToken,
	})
}

// LoginRequest login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token; the profile is present only for
// users who completed registration.
type LoginResponse struct {
	AccessToken string                 `json:"access_token"`
	TokenType   string                 `json:"token_type"`
	Profile     *profileentity.Profile `json:"profile,omitempty"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	userID, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrBadCredentials.Error()})
			return
		}
		h.logger.Errorw("login failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}

	// Streak update runs between credential verification and token
	// issuance. A user who has not completed registration has no streak
	// row yet; login still succeeds without one.
	p, err := h.profiles.TouchLogin(r.Context(), userID, time.Now())
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		h.logger.Errorw("streak update failed", "user_id", userID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}

	accessToken, err := h.tokens.Issue(userID)
	if err != nil {
		h.logger.Errorw("issue token failed", "user_id", userID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		Profile:     p,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
