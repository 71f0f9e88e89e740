package http

import (
	"net/http"
	"strconv"
	"time"

	"habitboard/internal/clock"
	"habitboard/internal/domain/service"
	"habitboard/internal/session"
)

// StatsHandler handles read-only statistics requests
type StatsHandler struct {
	sessions *session.Manager
	stats    service.StatsService
	clock    clock.Clock
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(sessions *session.Manager, stats service.StatsService, clk clock.Clock) *StatsHandler {
	return &StatsHandler{sessions: sessions, stats: stats, clock: clk}
}

// daysParam reads the "days" query parameter, defaulting to 7 and capping
// at one year.
func daysParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 7, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 366 {
		return 0, false
	}
	return days, true
}

// Daily returns one date's completion summary; defaults to today.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.clock.Today()
	} else if _, err := clock.WeekdayOf(date); err != nil {
		errorf(w, http.StatusBadRequest, "Invalid date")
		return
	}

	writeJSON(w, http.StatusOK, h.stats.DailyStats(sess, date))
}

// Range aggregates the trailing N days.
func (h *StatsHandler) Range(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	days, ok := daysParam(r)
	if !ok {
		errorf(w, http.StatusBadRequest, "Invalid days")
		return
	}

	writeJSON(w, http.StatusOK, h.stats.RangeStats(sess, clock.LastNDates(h.clock, days)))
}

// WeekComparison contrasts the trailing week with the one before it.
func (h *StatsHandler) WeekComparison(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.stats.WeekComparison(sess))
}

// Breakdown returns the per-habit completion rows over the trailing N days.
func (h *StatsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	days, ok := daysParam(r)
	if !ok {
		errorf(w, http.StatusBadRequest, "Invalid days")
		return
	}

	rows := h.stats.GroupBreakdown(sess, clock.LastNDates(h.clock, days))
	writeJSON(w, http.StatusOK, map[string]any{"habits": rows})
}

// Series returns chart points for the trailing N days.
func (h *StatsHandler) Series(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	days, ok := daysParam(r)
	if !ok {
		errorf(w, http.StatusBadRequest, "Invalid days")
		return
	}

	points := h.stats.DailySeries(sess, clock.LastNDates(h.clock, days))
	writeJSON(w, http.StatusOK, map[string]any{"days": points})
}

// Calendar returns the month-grid aggregation; defaults to the current
// month.
func (h *StatsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	now := h.clock.Now()
	year, month := now.Year(), now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1970 || y > 9999 {
			errorf(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			errorf(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = time.Month(m)
	}

	writeJSON(w, http.StatusOK, h.stats.CalendarMonth(sess, year, month))
}

// Streak returns the user's current and best streak.
func (h *StatsHandler) Streak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorf(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sess, ok := getSession(w, r, h.sessions)
	if !ok {
		return
	}

	sess.Lock()
	state := sess.Streak()
	sess.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"streak":      state.Streak,
		"best_streak": state.BestStreak,
		"last_date":   state.LastDate,
	})
}
