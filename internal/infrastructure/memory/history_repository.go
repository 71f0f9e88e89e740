package memory

import (
	"context"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"

	"github.com/google/uuid"
)

type historyRepository struct {
	store *Store
}

// NewHistoryRepository creates an in-memory history repository over the
// store.
func NewHistoryRepository(store *Store) repository.HistoryRepository {
	return &historyRepository{store: store}
}

func (r *historyRepository) LoadByUserID(ctx context.Context, userID uuid.UUID) (map[string]*entity.HistoryRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make(map[string]*entity.HistoryRecord)
	for date, rec := range r.store.history[userID] {
		cp := rec
		out[date] = &cp
	}
	return out, nil
}

func (r *historyRepository) Save(ctx context.Context, userID uuid.UUID, record *entity.HistoryRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.saveHistoryLocked(userID, record)
	return nil
}
