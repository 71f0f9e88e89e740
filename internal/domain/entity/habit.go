package entity

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxNameLength and MaxDescriptionLength bound new values at creation
	// and edit time. Existing longer values still load and render.
	MaxNameLength        = 30
	MaxDescriptionLength = 60
)

// Habit represents one scheduled occurrence of a recurring activity on
// exactly one weekday. Habits recurring on several weekdays are stored as
// sibling instances sharing a GroupID.
type Habit struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// GroupID is shared by all instances that represent the same habit on
	// different weekdays. Nil for single-day habits.
	GroupID *uuid.UUID

	// DayOfWeek is the single weekday this instance is scheduled for
	// (0 = Sunday, matching time.Weekday).
	DayOfWeek time.Weekday

	Name        string
	Time        string // "HH:MM", used for sort order and display only
	Description *string

	// Completed is true if the user has checked this habit off for the
	// current occurrence of its scheduled weekday. Cleared by the daily
	// rollover.
	Completed bool

	CreatedAt time.Time
}

// Clone returns a detached copy, safe to read without holding the lock of
// the session the original lives in.
func (h *Habit) Clone() *Habit {
	cp := *h
	return &cp
}

// IsGrouped returns true if the habit belongs to a multi-day group.
func (h *Habit) IsGrouped() bool {
	return h.GroupID != nil
}

// GroupKey returns the identifier the aggregation layer partitions by:
// the GroupID when present, the habit's own ID otherwise.
func (h *Habit) GroupKey() uuid.UUID {
	if h.GroupID != nil {
		return *h.GroupID
	}
	return h.ID
}

// DayConfig describes one instance of a habit definition at creation time.
type DayConfig struct {
	Name        string
	Time        string
	Description *string
}

// Validate checks the length and format bounds enforced at creation.
func (c DayConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(c.Name) > MaxNameLength {
		return fmt.Errorf("name exceeds %d characters", MaxNameLength)
	}
	if c.Description != nil && utf8.RuneCountInString(*c.Description) > MaxDescriptionLength {
		return fmt.Errorf("description exceeds %d characters", MaxDescriptionLength)
	}
	if err := ValidateClockTime(c.Time); err != nil {
		return err
	}
	return nil
}

// ValidateClockTime checks that s is a 24-hour "HH:MM" string.
func ValidateClockTime(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("time must be HH:MM (24-hour): %q", s)
	}
	return nil
}
