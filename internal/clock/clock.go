package clock

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date-key format used throughout the service.
const DateLayout = "2006-01-02"

// Clock abstracts wall-clock access so rollover and aggregation logic are
// testable without real time.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// Today returns the current date as "YYYY-MM-DD".
	Today() string
}

// System is the wall-clock implementation.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) Today() string { return time.Now().Format(DateLayout) }

// Fixed is a settable clock for tests.
type Fixed struct {
	T time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{T: t} }

func (f *Fixed) Now() time.Time { return f.T }

func (f *Fixed) Today() string { return f.T.Format(DateLayout) }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }

// AdvanceDays moves the fixed clock forward by n calendar days.
func (f *Fixed) AdvanceDays(n int) { f.T = f.T.AddDate(0, 0, n) }

// WeekdayOf returns the weekday index (0 = Sunday) of a "YYYY-MM-DD" date.
func WeekdayOf(date string) (time.Weekday, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.Weekday(), nil
}

// LastNDates returns the n dates ending at the clock's today, ascending.
func LastNDates(c Clock, n int) []string {
	dates := make([]string, 0, n)
	now := c.Now()
	for i := n - 1; i >= 0; i-- {
		dates = append(dates, now.AddDate(0, 0, -i).Format(DateLayout))
	}
	return dates
}

// DatesBack returns the n dates ending `end` days before today, ascending.
// DatesBack(c, 7, 7) is the 7-day window preceding the trailing week.
func DatesBack(c Clock, n, end int) []string {
	dates := make([]string, 0, n)
	now := c.Now()
	for i := end + n - 1; i >= end; i-- {
		dates = append(dates, now.AddDate(0, 0, -i).Format(DateLayout))
	}
	return dates
}

// MonthDates returns every date of the given calendar month, ascending.
func MonthDates(year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	dates := make([]string, 0, days)
	for d := 0; d < days; d++ {
		dates = append(dates, first.AddDate(0, 0, d).Format(DateLayout))
	}
	return dates
}

// MonthToDateDates returns the dates of the current month up to and
// including today, ascending.
func MonthToDateDates(c Clock) []string {
	now := c.Now()
	dates := make([]string, 0, now.Day())
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for d := 0; d < now.Day(); d++ {
		dates = append(dates, first.AddDate(0, 0, d).Format(DateLayout))
	}
	return dates
}
