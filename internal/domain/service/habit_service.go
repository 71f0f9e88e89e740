package service

import (
	"context"
	"time"

	"habitboard/internal/domain/entity"
	"habitboard/internal/session"

	"github.com/google/uuid"
)

// CreateResult is the outcome of a batch habit creation. When the request
// collides with existing habit names and was not yet confirmed, no mutation
// happens and RequiresConfirmation is set; the caller re-issues the request
// with confirmation instead of the core blocking on user interaction.
type CreateResult struct {
	RequiresConfirmation bool            `json:"requires_confirmation"`
	Conflicts            []string        `json:"conflicts,omitempty"`
	Habits               []*entity.Habit `json:"-"`
}

// UpdateFields carries the mutable fields of a single habit instance.
// Nil means "leave unchanged".
type UpdateFields struct {
	Name        *string
	Time        *string
	Description *string
}

// UpdateResult reports an applied edit. SingleDayOfGroup is advisory: the
// edited habit belongs to a multi-day group and siblings were deliberately
// left untouched, so the caller may warn the user.
type UpdateResult struct {
	Habit            *entity.Habit
	SingleDayOfGroup bool
}

// HabitService defines CRUD over the session's habit store and derivation
// of group views. Mutations apply optimistically in memory and enqueue
// persistence intents; they never block on the network.
type HabitService interface {
	// CreateHabits constructs one habit per weekday entry. More than one
	// entry produces siblings sharing a freshly generated group ID;
	// exactly one entry produces an ungrouped habit.
	CreateHabits(ctx context.Context, sess *session.Session, configs map[time.Weekday]entity.DayConfig, confirmed bool) (*CreateResult, error)

	// ToggleCompletion flips the completed flag on exactly one instance.
	// An unknown ID is a benign no-op: no state change, no persistence.
	ToggleCompletion(ctx context.Context, sess *session.Session, habitID uuid.UUID) error

	// UpdateHabit merges fields into exactly one instance, never its
	// siblings.
	UpdateHabit(ctx context.Context, sess *session.Session, habitID uuid.UUID, fields UpdateFields) (*UpdateResult, error)

	// DeleteHabit removes exactly one instance.
	DeleteHabit(ctx context.Context, sess *session.Session, habitID uuid.UUID) error

	// DeleteGroup removes every instance sharing the group ID.
	DeleteGroup(ctx context.Context, sess *session.Session, groupID uuid.UUID) error

	// HabitsForWeekday returns the habits scheduled for one weekday,
	// sorted by time then name.
	HabitsForWeekday(sess *session.Session, day time.Weekday) []*entity.Habit

	// GroupDays returns the distinct weekdays covered by a group, ascending.
	GroupDays(sess *session.Session, groupID uuid.UUID) []time.Weekday

	// Groups returns the two-level habit view.
	Groups(sess *session.Session) []*entity.HabitGroup
}
