package session

import (
	"sort"
	"sync"
	"time"

	"habitboard/internal/domain/entity"

	"github.com/google/uuid"
)

// Session owns the in-memory habit store, history log and streak state for
// one authenticated user. It is constructed when the user's first request
// arrives and discarded on logout or eviction; there is no process-wide
// store.
//
// A single mutex serializes everything touching the session: HTTP handlers
// and the periodic rollover check run on separate goroutines, so the
// "one logical thread per user" model becomes a per-session lock here.
// All accessors below except UserID and Authenticated require the caller
// to hold the lock.
type Session struct {
	mu sync.Mutex

	userID  uuid.UUID
	habits  []*entity.Habit
	history map[string]*entity.HistoryRecord
	streak  entity.StreakState
}

// New builds a session from freshly loaded persistence state.
func New(userID uuid.UUID, habits []*entity.Habit, history map[string]*entity.HistoryRecord, streak entity.StreakState) *Session {
	if history == nil {
		history = make(map[string]*entity.HistoryRecord)
	}
	return &Session{
		userID:  userID,
		habits:  habits,
		history: history,
		streak:  streak,
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// UserID returns the owning user. Immutable after construction.
func (s *Session) UserID() uuid.UUID { return s.userID }

// Authenticated reports whether the session belongs to a real user.
func (s *Session) Authenticated() bool { return s.userID != uuid.Nil }

// Habits returns the live habit slice.
func (s *Session) Habits() []*entity.Habit { return s.habits }

// Find returns the habit with the given ID, or nil.
func (s *Session) Find(habitID uuid.UUID) *entity.Habit {
	for _, h := range s.habits {
		if h.ID == habitID {
			return h
		}
	}
	return nil
}

// Append adds newly created habits to the store.
func (s *Session) Append(habits ...*entity.Habit) {
	s.habits = append(s.habits, habits...)
}

// Remove deletes exactly one instance. Returns false if the ID is unknown.
func (s *Session) Remove(habitID uuid.UUID) bool {
	for i, h := range s.habits {
		if h.ID == habitID {
			s.habits = append(s.habits[:i], s.habits[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveGroup deletes every instance sharing the group ID and returns how
// many were removed.
func (s *Session) RemoveGroup(groupID uuid.UUID) int {
	kept := s.habits[:0]
	removed := 0
	for _, h := range s.habits {
		if h.GroupID != nil && *h.GroupID == groupID {
			removed++
			continue
		}
		kept = append(kept, h)
	}
	s.habits = kept
	return removed
}

// ForWeekday returns the habits scheduled for the given weekday, sorted by
// time then name for stable display order.
func (s *Session) ForWeekday(day time.Weekday) []*entity.Habit {
	var out []*entity.Habit
	for _, h := range s.habits {
		if h.DayOfWeek == day {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Groups returns the two-level habit view, one group per conceptual habit.
func (s *Session) Groups() []*entity.HabitGroup {
	return entity.GroupHabits(s.habits)
}

// GroupDays returns the distinct weekdays covered by a group, ascending.
func (s *Session) GroupDays(groupID uuid.UUID) []time.Weekday {
	seen := make(map[time.Weekday]bool)
	var days []time.Weekday
	for _, h := range s.habits {
		if h.GroupID != nil && *h.GroupID == groupID && !seen[h.DayOfWeek] {
			seen[h.DayOfWeek] = true
			days = append(days, h.DayOfWeek)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// HasGroup reports whether any instance belongs to the group.
func (s *Session) HasGroup(groupID uuid.UUID) bool {
	for _, h := range s.habits {
		if h.GroupID != nil && *h.GroupID == groupID {
			return true
		}
	}
	return false
}

// HasName reports whether any instance carries the given display name.
func (s *Session) HasName(name string) bool {
	for _, h := range s.habits {
		if h.Name == name {
			return true
		}
	}
	return false
}

// History returns the frozen record for a date, if any.
func (s *Session) History(date string) (*entity.HistoryRecord, bool) {
	rec, ok := s.history[date]
	return rec, ok
}

// SetHistory stores a record under its date key.
func (s *Session) SetHistory(record *entity.HistoryRecord) {
	s.history[record.Date] = record
}

// HistoryDates returns all recorded date keys, ascending.
func (s *Session) HistoryDates() []string {
	dates := make([]string, 0, len(s.history))
	for d := range s.history {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Streak returns the current streak state.
func (s *Session) Streak() entity.StreakState { return s.streak }

// SetStreak overwrites the streak state.
func (s *Session) SetStreak(state entity.StreakState) { s.streak = state }

// ResetCompletion clears the completed flag on every habit in the store,
// not only the ones scheduled for the rolled-over day.
func (s *Session) ResetCompletion() {
	for _, h := range s.habits {
		h.Completed = false
	}
}
