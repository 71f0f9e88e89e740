package postgres

import (
	"context"
	"fmt"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type streakRepository struct {
	pool *pgxpool.Pool
}

// NewStreakRepository creates a new PostgreSQL streak repository
func NewStreakRepository(pool *pgxpool.Pool) repository.StreakRepository {
	return &streakRepository{pool: pool}
}

// NewRolloverRepository creates the PostgreSQL rollover committer.
func NewRolloverRepository(pool *pgxpool.Pool) repository.RolloverRepository {
	return &streakRepository{pool: pool}
}

func (r *streakRepository) Load(ctx context.Context, userID uuid.UUID) (entity.StreakState, error) {
	query := `
		SELECT streak, best_streak, last_date
		FROM streak_state
		WHERE user_id = $1
	`

	var state entity.StreakState
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&state.Streak, &state.BestStreak, &state.LastDate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			// First-ever run for this user.
			return entity.StreakState{}, nil
		}
		return entity.StreakState{}, fmt.Errorf("failed to load streak state: %w", err)
	}

	return state, nil
}

const upsertStreakQuery = `
	INSERT INTO streak_state (user_id, streak, best_streak, last_date)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id) DO UPDATE SET
		streak = EXCLUDED.streak,
		best_streak = EXCLUDED.best_streak,
		last_date = EXCLUDED.last_date
`

func (r *streakRepository) Save(ctx context.Context, userID uuid.UUID, state entity.StreakState) error {
	_, err := r.pool.Exec(ctx, upsertStreakQuery, userID, state.Streak, state.BestStreak, state.LastDate)
	if err != nil {
		return fmt.Errorf("failed to save streak state: %w", err)
	}
	return nil
}

// SaveRollover commits one rollover in a single transaction: the history
// snapshot, the streak state carrying the new last-active-date, and the
// completion-flag reset. The last-active-date advancing atomically with
// the rest is what keeps a retried rollover from double-counting.
func (r *streakRepository) SaveRollover(ctx context.Context, userID uuid.UUID, record *entity.HistoryRecord, state entity.StreakState) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin rollover transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if record != nil {
		raw, err := encodeEntries(record.Entries)
		if err != nil {
			return fmt.Errorf("failed to encode history entries: %w", err)
		}

		historyQuery := `
			INSERT INTO habit_history (user_id, date, entries)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, date) DO UPDATE SET entries = EXCLUDED.entries
		`
		if _, err := tx.Exec(ctx, historyQuery, userID, record.Date, raw); err != nil {
			return fmt.Errorf("failed to save history record: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, upsertStreakQuery, userID, state.Streak, state.BestStreak, state.LastDate); err != nil {
		return fmt.Errorf("failed to save streak state: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE habits SET completed = false WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to reset completion flags: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rollover: %w", err)
	}

	return nil
}
