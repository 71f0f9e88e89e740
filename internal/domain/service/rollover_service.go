package service

import (
	"context"

	"habitboard/internal/domain/entity"
	"habitboard/internal/session"
)

// RolloverResult describes one rollover attempt.
type RolloverResult struct {
	// Ran is false when the stored last-active-date already equals today
	// (the fencing token), making the attempt a no-op.
	Ran bool

	// EvaluatedDate is the date whose completion state was archived, empty
	// on a no-op or a first-ever run.
	EvaluatedDate string

	// Record is the history snapshot written for EvaluatedDate, nil when
	// nothing was scheduled that day.
	Record *entity.HistoryRecord

	Streak entity.StreakState
}

// RolloverService performs the day-boundary transition: it freezes the
// prior day's completion state into history, updates the streak, clears
// all completion flags and advances the last-active-date. Repeated runs
// within one day are no-ops.
type RolloverService interface {
	Run(ctx context.Context, sess *session.Session) (*RolloverResult, error)
}
