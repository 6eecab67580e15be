package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/caretrack/service-auth-go/internal/profile/entity"
	"github.com/caretrack/service-auth-go/internal/token"
)

// Handler exposes the completion and profile endpoints. Both sit behind the
// bearer gate; the user identity comes from the request context.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CompleteRequest is the one-time registration-completion payload.
type CompleteRequest struct {
	FirstName             string   `json:"first_name"`
	LastName              string   `json:"last_name"`
	Age                   int      `json:"age"`
	Gender                string   `json:"gender"`
	Diagnosis             string   `json:"diagnosis"`
	Medicine              string   `json:"medicine"`
	RecommendedActivities []string `json:"recommended_activities"`
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := token.UserIDFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": token.ErrMissing.Error()})
		return
	}
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid completion payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	p := &entity.Profile{
		UserID:                userID,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Age:                   req.Age,
		Gender:                req.Gender,
		Diagnosis:             req.Diagnosis,
		Medicine:              req.Medicine,
		RecommendedActivities: req.RecommendedActivities,
	}
	if err := h.svc.Complete(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyCompleted):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrAlreadyCompleted.Error()})
		case errors.Is(err, ErrInvalidProfile):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrInvalidProfile.Error()})
		default:
			h.logger.Errorw("complete registration failed", "user_id", userID, "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Registration completed successfully"})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := token.UserIDFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": token.ErrMissing.Error()})
		return
	}
	p, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": ErrNotFound.Error()})
			return
		}
		h.logger.Errorw("get profile failed", "user_id", userID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "profile lookup failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"profile": p})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
