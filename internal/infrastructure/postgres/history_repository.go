package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// historyEntryRow is the JSONB form of one archived completion; the entry
// list is stored as a single ordered document per date.
type historyEntryRow struct {
	HabitID   uuid.UUID  `json:"habit_id"`
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
	Name      string     `json:"name"`
	Completed bool       `json:"completed"`
}

func encodeEntries(entries []entity.HistoryEntry) ([]byte, error) {
	rows := make([]historyEntryRow, len(entries))
	for i, e := range entries {
		rows[i] = historyEntryRow(e)
	}
	return json.Marshal(rows)
}

func decodeEntries(data []byte) ([]entity.HistoryEntry, error) {
	var rows []historyEntryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	entries := make([]entity.HistoryEntry, len(rows))
	for i, r := range rows {
		entries[i] = entity.HistoryEntry(r)
	}
	return entries, nil
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new PostgreSQL history repository
func NewHistoryRepository(pool *pgxpool.Pool) repository.HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) LoadByUserID(ctx context.Context, userID uuid.UUID) (map[string]*entity.HistoryRecord, error) {
	query := `
		SELECT date, entries
		FROM habit_history
		WHERE user_id = $1
		ORDER BY date
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	history := make(map[string]*entity.HistoryRecord)
	for rows.Next() {
		var date string
		var raw []byte
		if err := rows.Scan(&date, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}

		entries, err := decodeEntries(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode history entries for %s: %w", date, err)
		}

		history[date] = &entity.HistoryRecord{Date: date, Entries: entries}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return history, nil
}

func (r *historyRepository) Save(ctx context.Context, userID uuid.UUID, record *entity.HistoryRecord) error {
	raw, err := encodeEntries(record.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode history entries: %w", err)
	}

	query := `
		INSERT INTO habit_history (user_id, date, entries)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE SET entries = EXCLUDED.entries
	`

	if _, err := r.pool.Exec(ctx, query, userID, record.Date, raw); err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}

	return nil
}
