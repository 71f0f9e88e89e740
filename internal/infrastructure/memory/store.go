package memory

import (
	"sync"

	"habitboard/internal/domain/entity"

	"github.com/google/uuid"
)

// Store is the shared in-memory data holder behind the "memory" storage
// driver. The repository types in this package borrow its mutex the way
// the SQL drivers share a connection pool. It backs development runs and
// is the fake the service tests use.
type Store struct {
	mu      sync.Mutex
	habits  map[uuid.UUID]entity.Habit
	history map[uuid.UUID]map[string]entity.HistoryRecord
	streaks map[uuid.UUID]entity.StreakState
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		habits:  make(map[uuid.UUID]entity.Habit),
		history: make(map[uuid.UUID]map[string]entity.HistoryRecord),
		streaks: make(map[uuid.UUID]entity.StreakState),
	}
}

func (s *Store) saveHistoryLocked(userID uuid.UUID, record *entity.HistoryRecord) {
	if s.history[userID] == nil {
		s.history[userID] = make(map[string]entity.HistoryRecord)
	}
	s.history[userID][record.Date] = *record
}

func (s *Store) resetCompletionLocked(userID uuid.UUID) {
	for id, h := range s.habits {
		if h.UserID == userID {
			h.Completed = false
			s.habits[id] = h
		}
	}
}

// HabitCount reports how many instances a user has stored. Test helper.
func (s *Store) HabitCount(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, h := range s.habits {
		if h.UserID == userID {
			n++
		}
	}
	return n
}
