package service

import (
	"context"
	"fmt"

	"habitboard/internal/clock"
	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"
	"habitboard/internal/domain/service"
	"habitboard/internal/session"
)

type rolloverService struct {
	repo  repository.RolloverRepository
	clock clock.Clock
}

// NewRolloverService creates the daily rollover engine.
func NewRolloverService(repo repository.RolloverRepository, clk clock.Clock) service.RolloverService {
	return &rolloverService{repo: repo, clock: clk}
}

// Run performs the stale→current transition. The stored last-active-date
// is the fencing token: when it already equals today the attempt is a
// no-op, so the periodic timer and repeated session opens cannot
// double-count a day. The streak delta is recomputed from the scheduled
// set and the live flags rather than incremented blindly, so a retried
// rollover converges to the same end state.
func (s *rolloverService) Run(ctx context.Context, sess *session.Session) (*service.RolloverResult, error) {
	sess.Lock()
	defer sess.Unlock()

	if !sess.Authenticated() {
		return nil, entity.ErrNotAuthenticated
	}

	today := s.clock.Today()
	state := sess.Streak()

	if state.LastDate >= today && state.LastDate != "" {
		return &service.RolloverResult{Ran: false, Streak: state}, nil
	}

	if state.LastDate == "" {
		// First-ever run: seed the last-active-date without evaluating
		// history.
		state.LastDate = today
		sess.SetStreak(state)
		if err := s.repo.SaveRollover(ctx, sess.UserID(), nil, state); err != nil {
			return &service.RolloverResult{Ran: true, Streak: state}, fmt.Errorf("failed to persist rollover: %w", err)
		}
		return &service.RolloverResult{Ran: true, Streak: state}, nil
	}

	prevDate := state.LastDate
	prevWeekday, err := clock.WeekdayOf(prevDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt last-active-date: %w", err)
	}

	scheduled := sess.ForWeekday(prevWeekday)

	var record *entity.HistoryRecord
	if len(scheduled) > 0 {
		record = &entity.HistoryRecord{Date: prevDate}
		allCompleted := true
		for _, h := range scheduled {
			record.Entries = append(record.Entries, entity.HistoryEntry{
				HabitID:   h.ID,
				GroupID:   h.GroupID,
				Name:      h.Name,
				Completed: h.Completed,
			})
			if !h.Completed {
				allCompleted = false
			}
		}
		state.Apply(allCompleted)
		sess.SetHistory(record)
	}
	// An empty schedule is "nothing to evaluate", not a failure: no
	// history record, streak untouched.

	sess.ResetCompletion()
	state.LastDate = today
	sess.SetStreak(state)

	result := &service.RolloverResult{
		Ran:           true,
		EvaluatedDate: prevDate,
		Record:        record,
		Streak:        state,
	}

	// History, streak and the flag reset commit together; in-memory state
	// stays authoritative if the write fails (the next attempt is fenced
	// by the already-advanced LastDate in memory, and a reload converges).
	if err := s.repo.SaveRollover(ctx, sess.UserID(), record, state); err != nil {
		return result, fmt.Errorf("failed to persist rollover: %w", err)
	}

	return result, nil
}
