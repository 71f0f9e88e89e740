package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"habitboard/internal/domain/entity"
	"habitboard/internal/session"
	"habitboard/internal/transport/http/middleware"

	"github.com/google/uuid"
)

// errorf writes the gateway's uniform JSON error shape.
func errorf(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleServiceError maps the core's error taxonomy onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrNotAuthenticated):
		errorf(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, entity.ErrHabitNotFound):
		errorf(w, http.StatusNotFound, "Habit not found")
	case errors.Is(err, entity.ErrGroupNotFound):
		errorf(w, http.StatusNotFound, "Habit group not found")
	default:
		errorf(w, http.StatusBadRequest, err.Error())
	}
}

// getSession resolves the caller's session, writing the error response
// itself when identity or loading fails.
func getSession(w http.ResponseWriter, r *http.Request, sessions *session.Manager) (*session.Session, bool) {
	userID := middleware.GetUserID(r)
	if userID == uuid.Nil {
		errorf(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	sess, err := sessions.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotAuthenticated) {
			errorf(w, http.StatusUnauthorized, "Unauthorized")
		} else {
			errorf(w, http.StatusInternalServerError, "Failed to load session")
		}
		return nil, false
	}

	return sess, true
}

type habitResponse struct {
	ID          string    `json:"id"`
	GroupID     *string   `json:"group_id,omitempty"`
	DayOfWeek   int       `json:"day_of_week"`
	Name        string    `json:"name"`
	Time        string    `json:"time"`
	Description *string   `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

func mapHabit(h *entity.Habit) habitResponse {
	resp := habitResponse{
		ID:          h.ID.String(),
		DayOfWeek:   int(h.DayOfWeek),
		Name:        h.Name,
		Time:        h.Time,
		Description: h.Description,
		Completed:   h.Completed,
		CreatedAt:   h.CreatedAt,
	}
	if h.GroupID != nil {
		gid := h.GroupID.String()
		resp.GroupID = &gid
	}
	return resp
}

func mapHabits(habits []*entity.Habit) []habitResponse {
	out := make([]habitResponse, len(habits))
	for i, h := range habits {
		out[i] = mapHabit(h)
	}
	return out
}
