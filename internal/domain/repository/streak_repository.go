package repository

import (
	"context"
	"habitboard/internal/domain/entity"

	"github.com/google/uuid"
)

// StreakRepository defines the persistence collaborator for per-user streak
// state.
type StreakRepository interface {
	// Load retrieves the streak state for a user. A user with no stored
	// state gets the zero value (LastDate empty, first-ever run).
	Load(ctx context.Context, userID uuid.UUID) (entity.StreakState, error)

	// Save overwrites the streak state for a user.
	Save(ctx context.Context, userID uuid.UUID, state entity.StreakState) error
}

// RolloverRepository commits the outcome of one daily rollover atomically:
// the history record for the evaluated date (nil when nothing was
// scheduled), the updated streak state including the new last-active-date,
// and the global completion-flag reset. SQL implementations use a single
// transaction so a crash cannot leave history written but the streak or
// reset unapplied.
type RolloverRepository interface {
	SaveRollover(ctx context.Context, userID uuid.UUID, record *entity.HistoryRecord, state entity.StreakState) error
}
