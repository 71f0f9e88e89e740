package memory

import (
	"context"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"

	"github.com/google/uuid"
)

type habitRepository struct {
	store *Store
}

// NewHabitRepository creates an in-memory habit repository over the store.
func NewHabitRepository(store *Store) repository.HabitRepository {
	return &habitRepository{store: store}
}

func (r *habitRepository) LoadByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.Habit
	for _, h := range r.store.habits {
		if h.UserID == userID {
			cp := h
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *habitRepository) CreateBatch(ctx context.Context, habits []*entity.Habit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, h := range habits {
		r.store.habits[h.ID] = *h
	}
	return nil
}

func (r *habitRepository) Update(ctx context.Context, habit *entity.Habit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.habits[habit.ID]; !ok {
		return entity.ErrHabitNotFound
	}
	r.store.habits[habit.ID] = *habit
	return nil
}

func (r *habitRepository) Delete(ctx context.Context, habitID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.habits[habitID]; !ok {
		return entity.ErrHabitNotFound
	}
	delete(r.store.habits, habitID)
	return nil
}

func (r *habitRepository) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, h := range r.store.habits {
		if h.UserID == userID && h.GroupID != nil && *h.GroupID == groupID {
			delete(r.store.habits, id)
		}
	}
	return nil
}

func (r *habitRepository) ResetCompletion(ctx context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.resetCompletionLocked(userID)
	return nil
}
