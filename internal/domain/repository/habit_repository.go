package repository

import (
	"context"
	"habitboard/internal/domain/entity"

	"github.com/google/uuid"
)

// HabitRepository defines the persistence collaborator for habit records.
// Every call is scoped to one user; implementations must not leak records
// across users.
type HabitRepository interface {
	// LoadByUserID retrieves all habit instances for a user.
	LoadByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error)

	// CreateBatch persists a set of sibling instances created together.
	// A single-day habit is a batch of one.
	CreateBatch(ctx context.Context, habits []*entity.Habit) error

	// Update overwrites the mutable fields of exactly one instance.
	Update(ctx context.Context, habit *entity.Habit) error

	// Delete removes exactly one instance.
	Delete(ctx context.Context, habitID uuid.UUID) error

	// DeleteGroup removes every instance sharing the group ID.
	DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error

	// ResetCompletion clears the completed flag on every habit of a user.
	ResetCompletion(ctx context.Context, userID uuid.UUID) error
}
