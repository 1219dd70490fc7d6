package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

type queueItem struct {
	task *domain.WorkerTask
	seq  uint64
}

// Queue orders pending tasks by priority (descending) and, among equal
// priorities, by arrival (ascending). The monotonically increasing seq makes
// the order total: no two distinct items ever compare equal.
type Queue struct {
	mu    sync.Mutex
	items []queueItem
	seq   uint64
}

func NewQueue() *Queue {
	return &Queue{items: make([]queueItem, 0, 64)}
}

// before reports whether a is served ahead of b.
func (a queueItem) before(b queueItem) bool {
	if a.task.Priority != b.task.Priority {
		return a.task.Priority > b.task.Priority
	}
	return a.seq < b.seq
}

func (q *Queue) Enqueue(ctx context.Context, task *domain.WorkerTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	it := queueItem{task: task.Clone(), seq: q.seq}

	// Keep the slice sorted; the new item has the largest seq, so it lands
	// after every queued item of the same priority.
	idx := sort.Search(len(q.items), func(i int) bool {
		return it.before(q.items[i])
	})
	q.items = append(q.items, queueItem{})
	copy(q.items[idx+1:], q.items[idx:])
	q.items[idx] = it
	return nil
}

func (q *Queue) Dequeue(ctx context.Context, agentID string) (*domain.WorkerTask, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false, nil
	}

	idx := 0
	if agentID != "" {
		idx = q.matchLocked(agentID)
	}
	task := q.items[idx].task
	q.items = append(q.items[:idx], q.items[idx+1:]...)
	return task, true, nil
}

// matchLocked picks the index of the best task for agentID: a task preferring
// this agent, else the best capability-agnostic task, else the global head.
// Caller holds the lock.
func (q *Queue) matchLocked(agentID string) int {
	agnostic := -1
	for i, it := range q.items {
		if it.task.PreferredAgentID == agentID {
			return i
		}
		if agnostic < 0 && it.task.RequiredCapability == "" {
			agnostic = i
		}
	}
	if agnostic >= 0 {
		return agnostic
	}
	return 0
}

func (q *Queue) Peek(ctx context.Context) (*domain.WorkerTask, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false, nil
	}
	return q.items[0].task.Clone(), true, nil
}

func (q *Queue) PendingCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}
