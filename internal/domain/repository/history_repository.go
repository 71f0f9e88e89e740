package repository

import (
	"context"
	"habitboard/internal/domain/entity"

	"github.com/google/uuid"
)

// HistoryRepository defines the persistence collaborator for the date-keyed
// history log.
type HistoryRepository interface {
	// LoadByUserID retrieves all history records for a user, keyed by date.
	LoadByUserID(ctx context.Context, userID uuid.UUID) (map[string]*entity.HistoryRecord, error)

	// Save writes the record for its date. Overwrite is allowed but not
	// expected in normal flow; rollover writes each date at most once.
	Save(ctx context.Context, userID uuid.UUID, record *entity.HistoryRecord) error
}
