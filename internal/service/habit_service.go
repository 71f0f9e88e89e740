package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"habitboard/internal/clock"
	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/service"
	"habitboard/internal/session"
	"habitboard/internal/syncqueue"

	"github.com/google/uuid"
)

type habitService struct {
	queue *syncqueue.Queue
	clock clock.Clock
}

// NewHabitService creates the habit store service. Mutations apply to the
// session first and persist through the sync queue.
func NewHabitService(queue *syncqueue.Queue, clk clock.Clock) service.HabitService {
	return &habitService{queue: queue, clock: clk}
}

// cloneHabits detaches habit values from the session store. Returned views
// are read by callers after the session lock is released, while the
// rollover may be resetting completion flags under it.
func cloneHabits(habits []*entity.Habit) []*entity.Habit {
	out := make([]*entity.Habit, len(habits))
	for i, h := range habits {
		out[i] = h.Clone()
	}
	return out
}

func (s *habitService) CreateHabits(ctx context.Context, sess *session.Session, configs map[time.Weekday]entity.DayConfig, confirmed bool) (*service.CreateResult, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("at least one weekday is required")
	}

	days := make([]time.Weekday, 0, len(configs))
	for day, cfg := range configs {
		if day < time.Sunday || day > time.Saturday {
			return nil, fmt.Errorf("invalid weekday %d", day)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	sess.Lock()
	defer sess.Unlock()

	if !sess.Authenticated() {
		return nil, entity.ErrNotAuthenticated
	}

	// Duplicate names do not block creation, but an unconfirmed request
	// that collides comes back to the caller instead of mutating anything.
	if !confirmed {
		var conflicts []string
		seen := make(map[string]bool)
		for _, day := range days {
			name := configs[day].Name
			if sess.HasName(name) && !seen[name] {
				seen[name] = true
				conflicts = append(conflicts, name)
			}
		}
		if len(conflicts) > 0 {
			return &service.CreateResult{RequiresConfirmation: true, Conflicts: conflicts}, nil
		}
	}

	var groupID *uuid.UUID
	if len(days) > 1 {
		id := uuid.New()
		groupID = &id
	}

	now := s.clock.Now()
	habits := make([]*entity.Habit, 0, len(days))
	for _, day := range days {
		cfg := configs[day]
		habits = append(habits, &entity.Habit{
			ID:          uuid.New(),
			UserID:      sess.UserID(),
			GroupID:     groupID,
			DayOfWeek:   day,
			Name:        cfg.Name,
			Time:        cfg.Time,
			Description: cfg.Description,
			Completed:   false,
			CreatedAt:   now,
		})
	}

	sess.Append(habits...)
	s.queue.EnqueueCreate(sess.UserID(), habits)

	return &service.CreateResult{Habits: cloneHabits(habits)}, nil
}

func (s *habitService) ToggleCompletion(ctx context.Context, sess *session.Session, habitID uuid.UUID) error {
	sess.Lock()
	defer sess.Unlock()

	if !sess.Authenticated() {
		return entity.ErrNotAuthenticated
	}

	h := sess.Find(habitID)
	if h == nil {
		// Tolerated: no state change and no persistence call.
		return nil
	}

	h.Completed = !h.Completed
	s.queue.EnqueueUpdate(h)
	return nil
}

func (s *habitService) UpdateHabit(ctx context.Context, sess *session.Session, habitID uuid.UUID, fields service.UpdateFields) (*service.UpdateResult, error) {
	if fields.Name != nil {
		check := entity.DayConfig{Name: *fields.Name, Time: "00:00"}
		if err := check.Validate(); err != nil {
			return nil, err
		}
	}
	if fields.Time != nil {
		if err := entity.ValidateClockTime(*fields.Time); err != nil {
			return nil, err
		}
	}
	if fields.Description != nil {
		check := entity.DayConfig{Name: "x", Time: "00:00", Description: fields.Description}
		if err := check.Validate(); err != nil {
			return nil, err
		}
	}

	sess.Lock()
	defer sess.Unlock()

	if !sess.Authenticated() {
		return nil, entity.ErrNotAuthenticated
	}

	h := sess.Find(habitID)
	if h == nil {
		return nil, entity.ErrHabitNotFound
	}

	if fields.Name != nil {
		h.Name = *fields.Name
	}
	if fields.Time != nil {
		h.Time = *fields.Time
	}
	if fields.Description != nil {
		h.Description = fields.Description
	}

	s.queue.EnqueueUpdate(h)

	// Edits never propagate to siblings; flag multi-day membership so the
	// caller can tell the user the change covers this weekday only.
	singleDay := h.GroupID != nil && len(sess.GroupDays(*h.GroupID)) > 1

	return &service.UpdateResult{Habit: h.Clone(), SingleDayOfGroup: singleDay}, nil
}

func (s *habitService) DeleteHabit(ctx context.Context, sess *session.Session, habitID uuid.UUID) error {
	sess.Lock()
	defer sess.Unlock()

	if !sess.Authenticated() {
		return entity.ErrNotAuthenticated
	}

	if !sess.Remove(habitID) {
		return entity.ErrHabitNotFound
	}

	s.queue.EnqueueDelete(sess.UserID(), habitID)
	return nil
}

func (s *habitService) DeleteGroup(ctx context.Context, sess *session.Session, groupID uuid.UUID) error {
	sess.Lock()
	defer sess.Unlock()

	if !sess.Authenticated() {
		return entity.ErrNotAuthenticated
	}

	if !sess.HasGroup(groupID) {
		return entity.ErrGroupNotFound
	}
	sess.RemoveGroup(groupID)

	s.queue.EnqueueDeleteGroup(sess.UserID(), groupID)
	return nil
}

func (s *habitService) HabitsForWeekday(sess *session.Session, day time.Weekday) []*entity.Habit {
	sess.Lock()
	defer sess.Unlock()
	return cloneHabits(sess.ForWeekday(day))
}

func (s *habitService) GroupDays(sess *session.Session, groupID uuid.UUID) []time.Weekday {
	sess.Lock()
	defer sess.Unlock()
	return sess.GroupDays(groupID)
}

func (s *habitService) Groups(sess *session.Session) []*entity.HabitGroup {
	sess.Lock()
	defer sess.Unlock()
	return entity.GroupHabits(cloneHabits(sess.Habits()))
}
