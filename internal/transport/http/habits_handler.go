package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/service"
	"habitboard/internal/session"

	"github.com/google/uuid"
)

// HabitHandler handles habit CRUD requests
type HabitHandler struct {
	sessions *session.Manager
	habits   service.HabitService
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(sessions *session.Manager, habits service.HabitService) *HabitHandler {
	return &HabitHandler{sessions: sessions, habits: habits}
}

type dayConfigRequest struct {
	Name        string  `json:"name"`
	Time        string  `json:"time"`
	Description *string `json:"description"`
}

// CreateHabits creates one habit instance per requested weekday. Multiple
// weekdays become a group. A name collision without "confirmed" comes
// back as 409 with the conflicting names; the client retries confirmed.
func (h *HabitHandler) CreateHabits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		Days      map[int]dayConfigRequest `json:"days"`
		Confirmed bool                     `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorf(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Days) == 0 {
		errorf(w, http.StatusBadRequest, "At least one weekday is required")
		return
	}

	configs := make(map[time.Weekday]entity.DayConfig, len(req.Days))
	for day, cfg := range req.Days {
		configs[time.Weekday(day)] = entity.DayConfig{
			Name:        cfg.Name,
			Time:        cfg.Time,
			Description: cfg.Description,
		}
	}

	result, err := h.habits.CreateHabits(r.Context(), sess, configs, req.Confirmed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if result.RequiresConfirmation {
		writeJSON(w, http.StatusConflict, result)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"habits": mapHabits(result.Habits),
	})
}

// ListHabits returns all habits, or the habits of one weekday when the
// "day" query parameter is present.
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	if dayParam := r.URL.Query().Get("day"); dayParam != "" {
		day, err := strconv.Atoi(dayParam)
		if err != nil || day < 0 || day > 6 {
			errorf(w, http.StatusBadRequest, "Invalid day")
			return
		}
		habits := h.habits.HabitsForWeekday(sess, time.Weekday(day))
		writeJSON(w, http.StatusOK, map[string]any{"habits": mapHabits(habits)})
		return
	}

	sess.Lock()
	habits := mapHabits(sess.Habits())
	sess.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"habits": habits})
}

// ListGroups returns the two-level view: one entry per conceptual habit
// with the weekdays it covers.
func (h *HabitHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	type groupResponse struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Days      []int           `json:"days"`
		IsGrouped bool            `json:"is_grouped"`
		Members   []habitResponse `json:"members"`
	}

	groups := h.habits.Groups(sess)
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		gr := groupResponse{
			ID:        g.ID.String(),
			Name:      g.Name,
			IsGrouped: g.IsGrouped(),
		}
		for _, day := range g.Days() {
			gr.Days = append(gr.Days, int(day))
			gr.Members = append(gr.Members, mapHabit(g.Members[day]))
		}
		out = append(out, gr)
	}

	writeJSON(w, http.StatusOK, map[string]any{"groups": out})
}

// ToggleCompletion flips one habit's completed flag. Unknown IDs are a
// deliberate no-op and still answer 200.
func (h *HabitHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorf(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	habitID, err := uuid.Parse(req.ID)
	if err != nil {
		errorf(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	if err := h.habits.ToggleCompletion(r.Context(), sess, habitID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateHabit edits one instance. The response flags when the habit is
// part of a multi-day group so the client can tell the user only this
// weekday changed.
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		ID          string  `json:"id"`
		Name        *string `json:"name"`
		Time        *string `json:"time"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorf(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	habitID, err := uuid.Parse(req.ID)
	if err != nil {
		errorf(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	result, err := h.habits.UpdateHabit(r.Context(), sess, habitID, service.UpdateFields{
		Name:        req.Name,
		Time:        req.Time,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"habit":               mapHabit(result.Habit),
		"single_day_of_group": result.SingleDayOfGroup,
	})
}

// DeleteHabit removes one instance.
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorf(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	habitID, err := uuid.Parse(req.ID)
	if err != nil {
		errorf(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	if err := h.habits.DeleteHabit(r.Context(), sess, habitID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteGroup removes every instance of a multi-day habit.
func (h *HabitHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		GroupID string `json:"group_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorf(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		errorf(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	if err := h.habits.DeleteGroup(r.Context(), sess, groupID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
