package session

import (
	"context"
	"fmt"
	"sync"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"

	"github.com/google/uuid"
)

// OpenHook runs once right after a session is loaded, before it is handed
// to any caller. The app wires the daily rollover here.
type OpenHook func(ctx context.Context, sess *Session) error

// Manager constructs and caches one Session per authenticated user.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	loading  map[uuid.UUID]chan struct{}

	habits  repository.HabitRepository
	history repository.HistoryRepository
	streaks repository.StreakRepository

	onOpen OpenHook
}

// NewManager creates a session manager over the persistence collaborators.
func NewManager(habits repository.HabitRepository, history repository.HistoryRepository, streaks repository.StreakRepository) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		loading:  make(map[uuid.UUID]chan struct{}),
		habits:   habits,
		history:  history,
		streaks:  streaks,
	}
}

// SetOpenHook registers the hook invoked on session construction.
func (m *Manager) SetOpenHook(hook OpenHook) { m.onOpen = hook }

// Get returns the session for a user, loading it from persistence on first
// access. The open hook (rollover) runs before the session is cached, so
// every caller observes post-rollover state. Loads run per user outside the
// manager lock: concurrent requests for one user share a single load, and a
// slow load for one user never stalls another user's first request.
func (m *Manager) Get(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, entity.ErrNotAuthenticated
	}

	for {
		m.mu.Lock()
		if sess, ok := m.sessions[userID]; ok {
			m.mu.Unlock()
			return sess, nil
		}
		wait, inFlight := m.loading[userID]
		if !inFlight {
			wait = make(chan struct{})
			m.loading[userID] = wait
			m.mu.Unlock()
			break
		}
		m.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	sess, err := m.load(ctx, userID)
	if err == nil && m.onOpen != nil {
		if hookErr := m.onOpen(ctx, sess); hookErr != nil {
			err = fmt.Errorf("failed to open session: %w", hookErr)
		}
	}

	m.mu.Lock()
	if err == nil {
		m.sessions[userID] = sess
	}
	close(m.loading[userID])
	delete(m.loading, userID)
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *Manager) load(ctx context.Context, userID uuid.UUID) (*Session, error) {
	habits, err := m.habits.LoadByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}

	history, err := m.history.LoadByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	streak, err := m.streaks.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak state: %w", err)
	}

	return New(userID, habits, history, streak), nil
}

// Close discards a user's session (logout). In-memory state is dropped;
// persistence already holds everything the sync queue managed to write.
func (m *Manager) Close(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Open returns a snapshot of all currently open sessions, for the periodic
// rollover check.
func (m *Manager) Open() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}
