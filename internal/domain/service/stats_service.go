package service

import (
	"time"

	"habitboard/internal/session"
)

// DayStats is the completion summary of one date.
type DayStats struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Rate      int    `json:"rate"`
}

// DayRef points at the best or worst day of a range. Date is nil when the
// range held no day with data.
type DayRef struct {
	Date *string `json:"date"`
	Rate int     `json:"rate"`
}

// RangeStats aggregates daily stats over an explicit list of dates. Days
// with no scheduled habits are skipped entirely. AvgRate mirrors
// OverallRate; the original behavior is preserved deliberately.
type RangeStats struct {
	TotalTasks     int    `json:"total_tasks"`
	TotalCompleted int    `json:"total_completed"`
	OverallRate    int    `json:"overall_rate"`
	AvgRate        int    `json:"avg_rate"`
	BestDay        DayRef `json:"best_day"`
	WorstDay       DayRef `json:"worst_day"`
	DaysWithData   int    `json:"days_with_data"`
}

// WeekComparison contrasts the trailing 7 days with the 7 days before them.
type WeekComparison struct {
	ThisWeek   RangeStats `json:"this_week"`
	LastWeek   RangeStats `json:"last_week"`
	Difference int        `json:"difference"`
}

// GroupStats is one row of the per-habit breakdown: exactly one row per
// conceptual habit regardless of how many weekdays it spans.
type GroupStats struct {
	Name           string   `json:"name"`
	CompletedCount int      `json:"completed_count"`
	TotalCount     int      `json:"total_count"`
	Rate           int      `json:"rate"`
	ScheduledDays  []string `json:"scheduled_days"`
	IsGrouped      bool     `json:"is_grouped"`
}

// DayPoint is one bar/line chart sample.
type DayPoint struct {
	Date      string `json:"date"`
	Label     string `json:"label"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Rate      int    `json:"rate"`
}

// CalendarDay is one cell of a calendar-month aggregation.
type CalendarDay struct {
	Date      string `json:"date"`
	Day       int    `json:"day"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Rate      int    `json:"rate"`
	HasData   bool   `json:"has_data"`
}

// MonthStats is the calendar aggregation of one month.
type MonthStats struct {
	Year    int           `json:"year"`
	Month   time.Month    `json:"month"`
	Days    []CalendarDay `json:"days"`
	Summary RangeStats    `json:"summary"`
}

// StatsService computes read-only statistics over the session's live store
// and history log. Callers supply explicit date lists; the engine is
// range-agnostic. No input is invalid: empty stores and empty ranges
// produce all-zero statistics.
type StatsService interface {
	DailyStats(sess *session.Session, date string) DayStats
	RangeStats(sess *session.Session, dates []string) RangeStats
	WeekComparison(sess *session.Session) WeekComparison
	GroupBreakdown(sess *session.Session, dates []string) []GroupStats
	DailySeries(sess *session.Session, dates []string) []DayPoint
	CalendarMonth(sess *session.Session, year int, month time.Month) MonthStats
}
