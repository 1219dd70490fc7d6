package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

// taskQueue stores every member at score 0 so the sorted set falls back to
// lexicographic member order. Members are "<rank>:<seq>:<id>" with fixed-width
// zero-padded numbers, rank = MaxInt32 - priority, so lexicographic order is
// exactly priority descending then arrival ascending.
type taskQueue struct {
	b *Backend
}

func encodeMember(priority int, seq int64, id string) string {
	rank := int64(math.MaxInt32) - int64(priority)
	return fmt.Sprintf("%011d:%020d:%s", rank, seq, id)
}

func memberID(member string) string {
	parts := strings.SplitN(member, ":", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}

func (q *taskQueue) Enqueue(ctx context.Context, task *domain.WorkerTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("%w: nil task", persistence.ErrInvalid)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	seq, err := q.b.client.Incr(ctx, keyQueueSeq).Result()
	if err != nil {
		return fmt.Errorf("next queue seq: %w", err)
	}
	member := encodeMember(task.Priority, seq, task.ID)
	pipe := q.b.client.TxPipeline()
	pipe.HSet(ctx, keyQueueItems, task.ID, data)
	pipe.ZAdd(ctx, keyQueue, &redis.Z{Score: 0, Member: member})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

type queueCandidate struct {
	member string
	task   *domain.WorkerTask
}

// candidates loads the head of the queue up to the inspect limit, dropping
// stale members whose task body has already been claimed.
func (q *taskQueue) candidates(ctx context.Context) ([]queueCandidate, error) {
	members, err := q.b.client.ZRange(ctx, keyQueue, 0, int64(q.b.inspectLimit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("scan queue: %w", err)
	}
	out := make([]queueCandidate, 0, len(members))
	for _, member := range members {
		id := memberID(member)
		if id == "" {
			q.b.client.ZRem(ctx, keyQueue, member)
			continue
		}
		data, err := q.b.client.HGet(ctx, keyQueueItems, id).Result()
		if err == redis.Nil {
			q.b.client.ZRem(ctx, keyQueue, member)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load queued task %s: %w", id, err)
		}
		var task domain.WorkerTask
		if err := json.Unmarshal([]byte(data), &task); err != nil {
			return nil, fmt.Errorf("unmarshal queued task %s: %w", id, err)
		}
		out = append(out, queueCandidate{member: member, task: &task})
	}
	return out, nil
}

func pickCandidate(candidates []queueCandidate, agentID string) queueCandidate {
	if agentID == "" {
		return candidates[0]
	}
	for _, c := range candidates {
		if c.task.PreferredAgentID == agentID {
			return c
		}
	}
	for _, c := range candidates {
		if c.task.RequiredCapability == "" {
			return c
		}
	}
	return candidates[0]
}

func (q *taskQueue) Dequeue(ctx context.Context, agentID string) (*domain.WorkerTask, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	for attempt := 0; attempt < q.b.inspectLimit; attempt++ {
		candidates, err := q.candidates(ctx)
		if err != nil {
			return nil, false, err
		}
		if len(candidates) == 0 {
			return nil, false, nil
		}
		chosen := pickCandidate(candidates, agentID)
		removed, err := q.b.client.ZRem(ctx, keyQueue, chosen.member).Result()
		if err != nil {
			return nil, false, fmt.Errorf("claim queued task: %w", err)
		}
		if removed == 1 {
			q.b.client.HDel(ctx, keyQueueItems, chosen.task.ID)
			return chosen.task, true, nil
		}
		// Another consumer claimed it first; rescan.
	}
	return nil, false, fmt.Errorf("dequeue: claim contention exceeded %d attempts", q.b.inspectLimit)
}

func (q *taskQueue) Peek(ctx context.Context) (*domain.WorkerTask, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	members, err := q.b.client.ZRange(ctx, keyQueue, 0, 0).Result()
	if err != nil {
		return nil, false, fmt.Errorf("peek queue: %w", err)
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	id := memberID(members[0])
	data, err := q.b.client.HGet(ctx, keyQueueItems, id).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load queued task %s: %w", id, err)
	}
	var task domain.WorkerTask
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		return nil, false, fmt.Errorf("unmarshal queued task %s: %w", id, err)
	}
	return &task, true, nil
}

func (q *taskQueue) PendingCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := q.b.client.ZCard(ctx, keyQueue).Result()
	if err != nil {
		return 0, fmt.Errorf("count queue: %w", err)
	}
	return n, nil
}
