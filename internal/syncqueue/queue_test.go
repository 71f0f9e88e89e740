package syncqueue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"habitboard/internal/domain/entity"
	"habitboard/internal/infrastructure/memory"

	"github.com/google/uuid"
)

// flakyHabitRepo fails the first failures calls of every method, then
// delegates to an in-memory store.
type flakyHabitRepo struct {
	mu       sync.Mutex
	failures int
	calls    int
	store    *memory.Store
}

func (r *flakyHabitRepo) step() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failures {
		return fmt.Errorf("simulated store outage")
	}
	return nil
}

func (r *flakyHabitRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *flakyHabitRepo) LoadByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	return memory.NewHabitRepository(r.store).LoadByUserID(ctx, userID)
}

func (r *flakyHabitRepo) CreateBatch(ctx context.Context, habits []*entity.Habit) error {
	if err := r.step(); err != nil {
		return err
	}
	return memory.NewHabitRepository(r.store).CreateBatch(ctx, habits)
}

func (r *flakyHabitRepo) Update(ctx context.Context, habit *entity.Habit) error {
	if err := r.step(); err != nil {
		return err
	}
	return memory.NewHabitRepository(r.store).Update(ctx, habit)
}

func (r *flakyHabitRepo) Delete(ctx context.Context, habitID uuid.UUID) error {
	if err := r.step(); err != nil {
		return err
	}
	return memory.NewHabitRepository(r.store).Delete(ctx, habitID)
}

func (r *flakyHabitRepo) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	if err := r.step(); err != nil {
		return err
	}
	return memory.NewHabitRepository(r.store).DeleteGroup(ctx, userID, groupID)
}

func (r *flakyHabitRepo) ResetCompletion(ctx context.Context, userID uuid.UUID) error {
	return memory.NewHabitRepository(r.store).ResetCompletion(ctx, userID)
}

func testOptions() Options {
	return Options{
		BufferSize:     16,
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
		OpTimeout:      time.Second,
	}
}

func TestQueue_AppliesIntentsInOrder(t *testing.T) {
	store := memory.NewStore()
	q := New(memory.NewHabitRepository(store), testOptions())

	userID := uuid.New()
	habits := []*entity.Habit{
		{ID: uuid.New(), UserID: userID, Name: "Read", Time: "08:00"},
		{ID: uuid.New(), UserID: userID, Name: "Gym", Time: "18:00"},
	}

	q.Start()
	q.EnqueueCreate(userID, habits)
	renamed := *habits[0]
	renamed.Name = "Read fiction"
	q.EnqueueUpdate(&renamed)
	q.EnqueueDelete(userID, habits[1].ID)
	q.Stop()

	loaded, err := memory.NewHabitRepository(store).LoadByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 habit after create+update+delete, got %d", len(loaded))
	}
	if loaded[0].Name != "Read fiction" {
		t.Errorf("update must land after create, got %q", loaded[0].Name)
	}
}

func TestQueue_RetriesUntilSuccess(t *testing.T) {
	store := memory.NewStore()
	repo := &flakyHabitRepo{failures: 2, store: store}
	q := New(repo, testOptions())

	userID := uuid.New()
	q.Start()
	q.EnqueueCreate(userID, []*entity.Habit{{ID: uuid.New(), UserID: userID, Name: "Read", Time: "08:00"}})
	q.Stop()

	if got := repo.callCount(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	if got := store.HabitCount(userID); got != 1 {
		t.Errorf("third attempt must succeed, got %d persisted habits", got)
	}
}

func TestQueue_DropsAfterExhaustedAttempts(t *testing.T) {
	store := memory.NewStore()
	repo := &flakyHabitRepo{failures: 1000, store: store}
	q := New(repo, testOptions())

	userID := uuid.New()
	q.Start()
	q.EnqueueCreate(userID, []*entity.Habit{{ID: uuid.New(), UserID: userID, Name: "Read", Time: "08:00"}})
	q.Stop()

	if got := repo.callCount(); got != 3 {
		t.Errorf("expected exactly MaxAttempts calls, got %d", got)
	}
	if got := store.HabitCount(userID); got != 0 {
		t.Errorf("dropped intent must not persist, got %d habits", got)
	}
}

func TestQueue_SnapshotsHabitAtEnqueue(t *testing.T) {
	store := memory.NewStore()
	q := New(memory.NewHabitRepository(store), testOptions())

	userID := uuid.New()
	h := &entity.Habit{ID: uuid.New(), UserID: userID, Name: "Read", Time: "08:00"}

	// Enqueue before Start so the mutation below is guaranteed to happen
	// before the worker runs.
	q.EnqueueCreate(userID, []*entity.Habit{h})
	h.Name = "Changed later"

	q.Start()
	q.Stop()

	loaded, err := memory.NewHabitRepository(store).LoadByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Read" {
		t.Errorf("persisted habit must be the enqueue-time snapshot, got %+v", loaded)
	}
}

func TestQueue_EnqueueAfterStopIsDropped(t *testing.T) {
	store := memory.NewStore()
	q := New(memory.NewHabitRepository(store), testOptions())

	q.Start()
	q.Stop()

	// Must not panic on the closed channel.
	userID := uuid.New()
	q.EnqueueCreate(userID, []*entity.Habit{{ID: uuid.New(), UserID: userID, Name: "Read", Time: "08:00"}})

	if got := store.HabitCount(userID); got != 0 {
		t.Errorf("post-stop intents must be dropped, got %d habits", got)
	}
}

func TestQueue_StopTwiceIsSafe(t *testing.T) {
	store := memory.NewStore()
	q := New(memory.NewHabitRepository(store), testOptions())

	q.Start()
	q.Stop()
	q.Stop()
}
