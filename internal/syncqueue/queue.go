package syncqueue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/repository"

	"github.com/google/uuid"
)

type opKind int

const (
	opCreateBatch opKind = iota
	opUpdateHabit
	opDeleteHabit
	opDeleteGroup
)

func (k opKind) String() string {
	switch k {
	case opCreateBatch:
		return "create_batch"
	case opUpdateHabit:
		return "update_habit"
	case opDeleteHabit:
		return "delete_habit"
	case opDeleteGroup:
		return "delete_group"
	default:
		return "unknown"
	}
}

// intent is one queued persistence task. Habit payloads are value copies
// taken at enqueue time, so later in-memory edits cannot race the worker.
type intent struct {
	kind    opKind
	userID  uuid.UUID
	habits  []entity.Habit
	habitID uuid.UUID
	groupID uuid.UUID
}

// Options tunes the queue's buffering and retry behavior.
type Options struct {
	BufferSize     int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	OpTimeout      time.Duration
}

func (o *Options) fillDefaults() {
	if o.BufferSize <= 0 {
		o.BufferSize = 256
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = time.Second
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = 10 * time.Second
	}
}

// Queue is the write-ahead sync queue: mutations apply to the in-memory
// session first, then enqueue an intent here. A single worker applies
// intents against the repositories in order, retrying with exponential
// backoff. An intent that exhausts its attempts is logged and dropped;
// the in-memory state stays authoritative until a future successful load
// overwrites it.
type Queue struct {
	habits repository.HabitRepository
	opts   Options

	mu     sync.Mutex
	ch     chan intent
	closed bool
	wg     sync.WaitGroup
}

// New creates a sync queue over the habit repository. Streak and history
// state is not routed here: the rollover persists both in one repository
// transaction so they never land independently.
func New(habits repository.HabitRepository, opts Options) *Queue {
	opts.fillDefaults()
	return &Queue{
		habits: habits,
		opts:   opts,
		ch:     make(chan intent, opts.BufferSize),
	}
}

// Start launches the worker goroutine.
func (q *Queue) Start() {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for it := range q.ch {
			q.process(it)
		}
	}()
}

// Stop drains outstanding intents and waits for the worker to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) enqueue(it intent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		log.Printf("sync queue closed, dropping %s intent", it.kind)
		return
	}
	q.ch <- it
}

// EnqueueCreate queues persistence of a freshly created sibling batch.
func (q *Queue) EnqueueCreate(userID uuid.UUID, habits []*entity.Habit) {
	copies := make([]entity.Habit, len(habits))
	for i, h := range habits {
		copies[i] = *h
	}
	q.enqueue(intent{kind: opCreateBatch, userID: userID, habits: copies})
}

// EnqueueUpdate queues persistence of one edited or toggled instance.
func (q *Queue) EnqueueUpdate(habit *entity.Habit) {
	q.enqueue(intent{kind: opUpdateHabit, userID: habit.UserID, habits: []entity.Habit{*habit}})
}

// EnqueueDelete queues removal of one instance.
func (q *Queue) EnqueueDelete(userID, habitID uuid.UUID) {
	q.enqueue(intent{kind: opDeleteHabit, userID: userID, habitID: habitID})
}

// EnqueueDeleteGroup queues removal of a whole group.
func (q *Queue) EnqueueDeleteGroup(userID, groupID uuid.UUID) {
	q.enqueue(intent{kind: opDeleteGroup, userID: userID, groupID: groupID})
}

func (q *Queue) process(it intent) {
	var err error
	for attempt := 0; attempt < q.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(q.opts.RetryBaseDelay << (attempt - 1))
		}
		if err = q.apply(it); err == nil {
			return
		}
		log.Printf("sync %s attempt %d/%d failed: %v", it.kind, attempt+1, q.opts.MaxAttempts, err)
	}
	log.Printf("sync %s dropped after %d attempts: %v", it.kind, q.opts.MaxAttempts, err)
}

func (q *Queue) apply(it intent) error {
	ctx, cancel := context.WithTimeout(context.Background(), q.opts.OpTimeout)
	defer cancel()

	switch it.kind {
	case opCreateBatch:
		batch := make([]*entity.Habit, len(it.habits))
		for i := range it.habits {
			batch[i] = &it.habits[i]
		}
		return q.habits.CreateBatch(ctx, batch)
	case opUpdateHabit:
		return q.habits.Update(ctx, &it.habits[0])
	case opDeleteHabit:
		return q.habits.Delete(ctx, it.habitID)
	case opDeleteGroup:
		return q.habits.DeleteGroup(ctx, it.userID, it.groupID)
	default:
		return fmt.Errorf("unknown intent kind %d", it.kind)
	}
}
