package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"
	"habitboard/internal/infrastructure/memory"

	"github.com/google/uuid"
)

func seededManager(t *testing.T, userID uuid.UUID) *Manager {
	t.Helper()

	store := memory.NewStore()
	habitRepo := memory.NewHabitRepository(store)
	historyRepo := memory.NewHistoryRepository(store)
	streakRepo := memory.NewStreakRepository(store)

	ctx := context.Background()
	err := habitRepo.CreateBatch(ctx, []*entity.Habit{
		{ID: uuid.New(), UserID: userID, DayOfWeek: time.Monday, Name: "Read", Time: "08:00"},
	})
	if err != nil {
		t.Fatalf("seed habits: %v", err)
	}
	err = historyRepo.Save(ctx, userID, &entity.HistoryRecord{
		Date:    "2025-03-09",
		Entries: []entity.HistoryEntry{{HabitID: uuid.New(), Name: "Read", Completed: true}},
	})
	if err != nil {
		t.Fatalf("seed history: %v", err)
	}
	err = streakRepo.Save(ctx, userID, entity.StreakState{Streak: 3, BestStreak: 5, LastDate: "2025-03-09"})
	if err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	return NewManager(habitRepo, historyRepo, streakRepo)
}

func TestManager_GetLoadsPersistedState(t *testing.T) {
	userID := uuid.New()
	m := seededManager(t, userID)

	sess, err := m.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	sess.Lock()
	defer sess.Unlock()

	if len(sess.Habits()) != 1 {
		t.Errorf("expected 1 loaded habit, got %d", len(sess.Habits()))
	}
	if _, ok := sess.History("2025-03-09"); !ok {
		t.Errorf("expected loaded history record")
	}
	if sess.Streak().Streak != 3 || sess.Streak().LastDate != "2025-03-09" {
		t.Errorf("unexpected streak state: %+v", sess.Streak())
	}
}

func TestManager_GetCachesSession(t *testing.T) {
	userID := uuid.New()
	m := seededManager(t, userID)
	ctx := context.Background()

	first, err := m.Get(ctx, userID)
	if err != nil {
		t.Fatalf("first Get failed: %v", err)
	}
	second, err := m.Get(ctx, userID)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if first != second {
		t.Errorf("repeated Get must return the same session")
	}
}

func TestManager_NilUserIsNotAuthenticated(t *testing.T) {
	m := seededManager(t, uuid.New())

	if _, err := m.Get(context.Background(), uuid.Nil); err != entity.ErrNotAuthenticated {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestManager_OpenHookRunsOncePerLoad(t *testing.T) {
	userID := uuid.New()
	m := seededManager(t, userID)
	ctx := context.Background()

	calls := 0
	m.SetOpenHook(func(ctx context.Context, sess *Session) error {
		calls++
		return nil
	})

	if _, err := m.Get(ctx, userID); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := m.Get(ctx, userID); err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("hook must run once per session load, ran %d times", calls)
	}
}

func TestManager_OpenHookFailureBlocksSession(t *testing.T) {
	userID := uuid.New()
	m := seededManager(t, userID)
	ctx := context.Background()

	m.SetOpenHook(func(ctx context.Context, sess *Session) error {
		return fmt.Errorf("hook exploded")
	})

	if _, err := m.Get(ctx, userID); err == nil {
		t.Fatalf("expected hook failure to surface")
	}

	// The failed session must not be cached: a later attempt with a
	// healthy hook succeeds.
	m.SetOpenHook(nil)
	if _, err := m.Get(ctx, userID); err != nil {
		t.Errorf("retry after hook failure should succeed, got %v", err)
	}
}

func TestManager_CloseEvictsSession(t *testing.T) {
	userID := uuid.New()
	m := seededManager(t, userID)
	ctx := context.Background()

	first, err := m.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	m.Close(userID)

	second, err := m.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get after Close failed: %v", err)
	}
	if first == second {
		t.Errorf("Close must discard the cached session")
	}
}

// countingHabitRepo counts LoadByUserID calls.
type countingHabitRepo struct {
	repository.HabitRepository
	mu    sync.Mutex
	loads int
}

func (r *countingHabitRepo) LoadByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	r.mu.Lock()
	r.loads++
	r.mu.Unlock()
	return r.HabitRepository.LoadByUserID(ctx, userID)
}

func (r *countingHabitRepo) loadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

func TestManager_ConcurrentGetsShareOneLoad(t *testing.T) {
	userID := uuid.New()
	store := memory.NewStore()
	habitRepo := &countingHabitRepo{HabitRepository: memory.NewHabitRepository(store)}
	m := NewManager(habitRepo, memory.NewHistoryRepository(store), memory.NewStreakRepository(store))
	ctx := context.Background()

	const workers = 8
	sessions := make([]*Session, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := m.Get(ctx, userID)
			if err != nil {
				t.Errorf("Get failed: %v", err)
				return
			}
			sessions[i] = sess
		}(i)
	}
	wg.Wait()

	if got := habitRepo.loadCount(); got != 1 {
		t.Errorf("concurrent first requests must share one load, got %d", got)
	}
	for i := 1; i < workers; i++ {
		if sessions[i] != sessions[0] {
			t.Errorf("worker %d got a different session", i)
		}
	}
}

// gatedHabitRepo stalls LoadByUserID for one user until released.
type gatedHabitRepo struct {
	repository.HabitRepository
	slowUser uuid.UUID
	entered  chan struct{}
	release  chan struct{}
}

func (r *gatedHabitRepo) LoadByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	if userID == r.slowUser {
		close(r.entered)
		<-r.release
	}
	return r.HabitRepository.LoadByUserID(ctx, userID)
}

func TestManager_SlowLoadDoesNotBlockOtherUsers(t *testing.T) {
	slow, fast := uuid.New(), uuid.New()
	store := memory.NewStore()
	repo := &gatedHabitRepo{
		HabitRepository: memory.NewHabitRepository(store),
		slowUser:        slow,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	m := NewManager(repo, memory.NewHistoryRepository(store), memory.NewStreakRepository(store))
	ctx := context.Background()

	slowDone := make(chan error, 1)
	go func() {
		_, err := m.Get(ctx, slow)
		slowDone <- err
	}()
	<-repo.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := m.Get(ctx, fast)
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatalf("Get for the unrelated user failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("unrelated user's first request stalled behind another user's load")
	}

	close(repo.release)
	if err := <-slowDone; err != nil {
		t.Fatalf("Get for the stalled user failed: %v", err)
	}
}

func TestManager_OpenSnapshotsSessions(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := memory.NewStore()
	m := NewManager(
		memory.NewHabitRepository(store),
		memory.NewHistoryRepository(store),
		memory.NewStreakRepository(store),
	)
	ctx := context.Background()

	if len(m.Open()) != 0 {
		t.Errorf("expected no open sessions initially")
	}
	if _, err := m.Get(ctx, a); err != nil {
		t.Fatalf("Get a failed: %v", err)
	}
	if _, err := m.Get(ctx, b); err != nil {
		t.Fatalf("Get b failed: %v", err)
	}
	if got := len(m.Open()); got != 2 {
		t.Errorf("expected 2 open sessions, got %d", got)
	}
}
