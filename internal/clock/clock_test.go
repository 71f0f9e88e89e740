package clock

import (
	"testing"
	"time"
)

func TestWeekdayOf(t *testing.T) {
	cases := []struct {
		date string
		want time.Weekday
	}{
		{"2025-03-09", time.Sunday},
		{"2025-03-10", time.Monday},
		{"2025-03-15", time.Saturday},
	}
	for _, tc := range cases {
		got, err := WeekdayOf(tc.date)
		if err != nil {
			t.Fatalf("WeekdayOf(%q) failed: %v", tc.date, err)
		}
		if got != tc.want {
			t.Errorf("WeekdayOf(%q) = %v, want %v", tc.date, got, tc.want)
		}
	}

	if _, err := WeekdayOf("not-a-date"); err == nil {
		t.Errorf("expected error for malformed date")
	}
}

func TestLastNDates(t *testing.T) {
	c := NewFixed(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	dates := LastNDates(c, 3)
	want := []string{"2025-03-08", "2025-03-09", "2025-03-10"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %q, want %q", i, dates[i], want[i])
		}
	}
}

func TestDatesBack_PrecedingWeekWindow(t *testing.T) {
	c := NewFixed(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	thisWeek := LastNDates(c, 7)
	lastWeek := DatesBack(c, 7, 7)

	if lastWeek[0] != "2025-02-25" || lastWeek[6] != "2025-03-03" {
		t.Errorf("unexpected last-week window: %v", lastWeek)
	}
	// The two windows must be adjacent and non-overlapping.
	if lastWeek[6] >= thisWeek[0] {
		t.Errorf("windows overlap: last week ends %s, this week starts %s", lastWeek[6], thisWeek[0])
	}
}

func TestMonthDates(t *testing.T) {
	feb := MonthDates(2024, time.February) // leap year
	if len(feb) != 29 {
		t.Errorf("expected 29 days in Feb 2024, got %d", len(feb))
	}
	if feb[0] != "2024-02-01" || feb[28] != "2024-02-29" {
		t.Errorf("unexpected bounds: %s .. %s", feb[0], feb[len(feb)-1])
	}
}

func TestMonthToDateDates(t *testing.T) {
	c := NewFixed(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	dates := MonthToDateDates(c)
	if len(dates) != 10 {
		t.Fatalf("expected 10 dates, got %d", len(dates))
	}
	if dates[0] != "2025-03-01" || dates[9] != "2025-03-10" {
		t.Errorf("unexpected bounds: %s .. %s", dates[0], dates[9])
	}
}

func TestFixedAdvance(t *testing.T) {
	c := NewFixed(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))
	if c.Today() != "2025-03-10" {
		t.Fatalf("unexpected today: %s", c.Today())
	}

	c.Advance(2 * time.Hour)
	if c.Today() != "2025-03-11" {
		t.Errorf("expected midnight crossing, got %s", c.Today())
	}

	c.AdvanceDays(3)
	if c.Today() != "2025-03-14" {
		t.Errorf("expected 2025-03-14, got %s", c.Today())
	}
}
