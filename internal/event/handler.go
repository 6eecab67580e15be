package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/caretrack/service-auth-go/internal/event/entity"
	"github.com/caretrack/service-auth-go/internal/token"
)

// Handler exposes the timeline endpoints: generic events, medication log,
// and the ordered read-back.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// EventView is the wire shape of one timeline row.
type EventView struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	EventDate string `json:"event_date"`
	EventTime string `json:"event_time"`
}

func viewOf(e entity.Event) EventView {
	t := e.EventTime
	// TIME columns round-trip as HH:MM:SS; clients send and read HH:MM.
	if len(t) > 5 && strings.HasSuffix(t, ":00") {
		t = t[:5]
	}
	return EventView{
		ID:        e.ID,
		Title:     e.Title,
		EventDate: e.EventDate.Format("2006-01-02"),
		EventTime: t,
	}
}

// LogRequest is the payload for POST /log_event.
type LogRequest struct {
	Title     string `json:"title"`
	EventDate string `json:"event_date"`
	EventTime string `json:"event_time"`
}

func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	userID, ok := token.UserIDFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": token.ErrMissing.Error()})
		return
	}
	var req LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	id, err := h.svc.Log(r.Context(), userID, req.Title, req.EventDate, req.EventTime)
	if err != nil {
		h.writeError(w, userID, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"message": "Event logged successfully", "event_id": id})
}

// MedicationRequest is the payload for POST /medication_log.
type MedicationRequest struct {
	Medication string `json:"medication"`
	Time       string `json:"time"`
}

func (h *Handler) LogMedication(w http.ResponseWriter, r *http.Request) {
	userID, ok := token.UserIDFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": token.ErrMissing.Error()})
		return
	}
	var req MedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	id, err := h.svc.LogMedication(r.Context(), userID, req.Medication, req.Time)
	if err != nil {
		h.writeError(w, userID, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"message": "Medication logged successfully", "event_id": id})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := token.UserIDFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": token.ErrMissing.Error()})
		return
	}
	events, err := h.svc.ListFor(r.Context(), userID)
	if err != nil {
		h.logger.Errorw("list events failed", "user_id", userID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "event lookup failed"})
		return
	}
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, viewOf(e))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"events": views})
}

func (h *Handler) writeError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, ErrBadDate), errors.Is(err, ErrBadTime):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Errorw("append event failed", "user_id", userID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "event write failed"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
