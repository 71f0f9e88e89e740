package memory

import (
	"context"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"

	"github.com/google/uuid"
)

type streakRepository struct {
	store *Store
}

// NewStreakRepository creates an in-memory streak repository over the
// store. It also serves as the rollover repository: with a single mutex
// the three-part rollover commit is naturally atomic.
func NewStreakRepository(store *Store) repository.StreakRepository {
	return &streakRepository{store: store}
}

// NewRolloverRepository creates the in-memory rollover committer.
func NewRolloverRepository(store *Store) repository.RolloverRepository {
	return &streakRepository{store: store}
}

func (r *streakRepository) Load(ctx context.Context, userID uuid.UUID) (entity.StreakState, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.streaks[userID], nil
}

func (r *streakRepository) Save(ctx context.Context, userID uuid.UUID, state entity.StreakState) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.streaks[userID] = state
	return nil
}

func (r *streakRepository) SaveRollover(ctx context.Context, userID uuid.UUID, record *entity.HistoryRecord, state entity.StreakState) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if record != nil {
		r.store.saveHistoryLocked(userID, record)
	}
	r.store.streaks[userID] = state
	r.store.resetCompletionLocked(userID)
	return nil
}
