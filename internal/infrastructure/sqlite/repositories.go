package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"

	"github.com/google/uuid"
)

type historyEntryRow struct {
	HabitID   uuid.UUID  `json:"habit_id"`
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
	Name      string     `json:"name"`
	Completed bool       `json:"completed"`
}

type habitRepository struct {
	store *Store
}

// NewHabitRepository creates a SQLite habit repository over the store.
func NewHabitRepository(store *Store) repository.HabitRepository {
	return &habitRepository{store: store}
}

func (r *habitRepository) LoadByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	query := `
		SELECT id, group_id, day_of_week, name, time, description, completed, created_at
		FROM habits
		WHERE user_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.store.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	defer rows.Close()

	var habits []*entity.Habit
	for rows.Next() {
		var (
			id          string
			groupID     sql.NullString
			dayOfWeek   int
			name        string
			habitTime   string
			description sql.NullString
			completed   int
			createdAt   string
		)
		if err := rows.Scan(&id, &groupID, &dayOfWeek, &name, &habitTime, &description, &completed, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}

		habit := &entity.Habit{
			UserID:    userID,
			DayOfWeek: time.Weekday(dayOfWeek),
			Name:      name,
			Time:      habitTime,
			Completed: completed != 0,
		}

		habit.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt habit id %q: %w", id, err)
		}
		if groupID.Valid {
			gid, err := uuid.Parse(groupID.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt group id %q: %w", groupID.String, err)
			}
			habit.GroupID = &gid
		}
		if description.Valid {
			d := description.String
			habit.Description = &d
		}
		habit.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
		}

		habits = append(habits, habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return habits, nil
}

func habitArgs(h *entity.Habit) []any {
	var groupID any
	if h.GroupID != nil {
		groupID = h.GroupID.String()
	}
	var description any
	if h.Description != nil {
		description = *h.Description
	}
	completed := 0
	if h.Completed {
		completed = 1
	}
	return []any{
		h.ID.String(), h.UserID.String(), groupID, int(h.DayOfWeek),
		h.Name, h.Time, description, completed,
		h.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (r *habitRepository) CreateBatch(ctx context.Context, habits []*entity.Habit) error {
	query := `
		INSERT INTO habits (id, user_id, group_id, day_of_week, name, time, description, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, h := range habits {
		if _, err := tx.ExecContext(ctx, query, habitArgs(h)...); err != nil {
			return fmt.Errorf("failed to create habit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit habit batch: %w", err)
	}

	return nil
}

func (r *habitRepository) Update(ctx context.Context, habit *entity.Habit) error {
	var description any
	if habit.Description != nil {
		description = *habit.Description
	}
	completed := 0
	if habit.Completed {
		completed = 1
	}

	query := `UPDATE habits SET name = ?, time = ?, description = ?, completed = ? WHERE id = ?`
	res, err := r.store.db.ExecContext(ctx, query, habit.Name, habit.Time, description, completed, habit.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrHabitNotFound
	}
	return nil
}

func (r *habitRepository) Delete(ctx context.Context, habitID uuid.UUID) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, habitID.String())
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrHabitNotFound
	}
	return nil
}

func (r *habitRepository) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	_, err := r.store.db.ExecContext(ctx,
		`DELETE FROM habits WHERE user_id = ? AND group_id = ?`,
		userID.String(), groupID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete habit group: %w", err)
	}
	return nil
}

func (r *habitRepository) ResetCompletion(ctx context.Context, userID uuid.UUID) error {
	_, err := r.store.db.ExecContext(ctx,
		`UPDATE habits SET completed = 0 WHERE user_id = ?`, userID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to reset completion flags: %w", err)
	}
	return nil
}

type historyRepository struct {
	store *Store
}

// NewHistoryRepository creates a SQLite history repository over the store.
func NewHistoryRepository(store *Store) repository.HistoryRepository {
	return &historyRepository{store: store}
}

func (r *historyRepository) LoadByUserID(ctx context.Context, userID uuid.UUID) (map[string]*entity.HistoryRecord, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT date, entries FROM habit_history WHERE user_id = ? ORDER BY date`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	history := make(map[string]*entity.HistoryRecord)
	for rows.Next() {
		var date, raw string
		if err := rows.Scan(&date, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}

		var entryRows []historyEntryRow
		if err := json.Unmarshal([]byte(raw), &entryRows); err != nil {
			return nil, fmt.Errorf("failed to decode history entries for %s: %w", date, err)
		}

		entries := make([]entity.HistoryEntry, len(entryRows))
		for i, er := range entryRows {
			entries[i] = entity.HistoryEntry(er)
		}
		history[date] = &entity.HistoryRecord{Date: date, Entries: entries}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return history, nil
}

const upsertHistoryQuery = `
	INSERT INTO habit_history (user_id, date, entries)
	VALUES (?, ?, ?)
	ON CONFLICT (user_id, date) DO UPDATE SET entries = excluded.entries
`

func encodeHistory(record *entity.HistoryRecord) (string, error) {
	entryRows := make([]historyEntryRow, len(record.Entries))
	for i, e := range record.Entries {
		entryRows[i] = historyEntryRow(e)
	}
	raw, err := json.Marshal(entryRows)
	if err != nil {
		return "", fmt.Errorf("failed to encode history entries: %w", err)
	}
	return string(raw), nil
}

func (r *historyRepository) Save(ctx context.Context, userID uuid.UUID, record *entity.HistoryRecord) error {
	raw, err := encodeHistory(record)
	if err != nil {
		return err
	}

	if _, err := r.store.db.ExecContext(ctx, upsertHistoryQuery, userID.String(), record.Date, raw); err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}
	return nil
}

type streakRepository struct {
	store *Store
}

// NewStreakRepository creates a SQLite streak repository over the store.
func NewStreakRepository(store *Store) repository.StreakRepository {
	return &streakRepository{store: store}
}

// NewRolloverRepository creates the SQLite rollover committer.
func NewRolloverRepository(store *Store) repository.RolloverRepository {
	return &streakRepository{store: store}
}

func (r *streakRepository) Load(ctx context.Context, userID uuid.UUID) (entity.StreakState, error) {
	var state entity.StreakState
	err := r.store.db.QueryRowContext(ctx,
		`SELECT streak, best_streak, last_date FROM streak_state WHERE user_id = ?`,
		userID.String(),
	).Scan(&state.Streak, &state.BestStreak, &state.LastDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return entity.StreakState{}, nil
		}
		return entity.StreakState{}, fmt.Errorf("failed to load streak state: %w", err)
	}
	return state, nil
}

const upsertStreakQuery = `
	INSERT INTO streak_state (user_id, streak, best_streak, last_date)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET
		streak = excluded.streak,
		best_streak = excluded.best_streak,
		last_date = excluded.last_date
`

func (r *streakRepository) Save(ctx context.Context, userID uuid.UUID, state entity.StreakState) error {
	_, err := r.store.db.ExecContext(ctx, upsertStreakQuery,
		userID.String(), state.Streak, state.BestStreak, state.LastDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save streak state: %w", err)
	}
	return nil
}

func (r *streakRepository) SaveRollover(ctx context.Context, userID uuid.UUID, record *entity.HistoryRecord, state entity.StreakState) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rollover transaction: %w", err)
	}
	defer tx.Rollback()

	if record != nil {
		raw, err := encodeHistory(record)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertHistoryQuery, userID.String(), record.Date, raw); err != nil {
			return fmt.Errorf("failed to save history record: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, upsertStreakQuery,
		userID.String(), state.Streak, state.BestStreak, state.LastDate,
	); err != nil {
		return fmt.Errorf("failed to save streak state: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE habits SET completed = 0 WHERE user_id = ?`, userID.String(),
	); err != nil {
		return fmt.Errorf("failed to reset completion flags: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollover: %w", err)
	}

	return nil
}
