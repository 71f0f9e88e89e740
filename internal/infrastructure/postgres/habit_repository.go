package postgres

import (
	"context"
	"fmt"
	"time"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type habitRepository struct {
	pool *pgxpool.Pool
}

// NewHabitRepository creates a new PostgreSQL habit repository
func NewHabitRepository(pool *pgxpool.Pool) repository.HabitRepository {
	return &habitRepository{pool: pool}
}

func (r *habitRepository) LoadByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	query := `
		SELECT
			id, user_id, group_id, day_of_week, name, time, description,
			completed, created_at
		FROM habits
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	defer rows.Close()

	var habits []*entity.Habit
	for rows.Next() {
		habit := &entity.Habit{}
		var dayOfWeek int32
		err := rows.Scan(
			&habit.ID, &habit.UserID, &habit.GroupID, &dayOfWeek,
			&habit.Name, &habit.Time, &habit.Description,
			&habit.Completed, &habit.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habit.DayOfWeek = time.Weekday(dayOfWeek)
		habits = append(habits, habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return habits, nil
}

func (r *habitRepository) CreateBatch(ctx context.Context, habits []*entity.Habit) error {
	query := `
		INSERT INTO habits (
			id, user_id, group_id, day_of_week, name, time, description,
			completed, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	// Sibling instances of one definition commit together.
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, habit := range habits {
		_, err := tx.Exec(ctx, query,
			habit.ID, habit.UserID, habit.GroupID, int32(habit.DayOfWeek),
			habit.Name, habit.Time, habit.Description,
			habit.Completed, habit.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create habit: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit habit batch: %w", err)
	}

	return nil
}

func (r *habitRepository) Update(ctx context.Context, habit *entity.Habit) error {
	query := `
		UPDATE habits
		SET name = $2, time = $3, description = $4, completed = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		habit.ID, habit.Name, habit.Time, habit.Description, habit.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return entity.ErrHabitNotFound
	}

	return nil
}

func (r *habitRepository) Delete(ctx context.Context, habitID uuid.UUID) error {
	query := `DELETE FROM habits WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, habitID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return entity.ErrHabitNotFound
	}

	return nil
}

func (r *habitRepository) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	query := `DELETE FROM habits WHERE user_id = $1 AND group_id = $2`

	_, err := r.pool.Exec(ctx, query, userID, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete habit group: %w", err)
	}

	return nil
}

func (r *habitRepository) ResetCompletion(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE habits SET completed = false WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to reset completion flags: %w", err)
	}

	return nil
}
