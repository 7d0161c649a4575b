package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-trust-service/internal/model"
)

type memQueue struct {
	actions []model.PendingAction
}

func (q *memQueue) Enqueue(_ context.Context, action *model.PendingAction) error {
	for _, existing := range q.actions {
		if existing.IdempotencyKey == action.IdempotencyKey {
			return nil
		}
	}
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	action.CreatedAt = time.Now()
	q.actions = append(q.actions, *action)
	return nil
}

func (q *memQueue) NextQueued(_ context.Context, limit int) ([]model.PendingAction, error) {
	var out []model.PendingAction
	for _, a := range q.actions {
		if a.Status == model.PendingActionQueued {
			out = append(out, a)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (q *memQueue) MarkApplied(_ context.Context, id uuid.UUID, at time.Time) error {
	for i := range q.actions {
		if q.actions[i].ID == id {
			q.actions[i].Status = model.PendingActionApplied
			q.actions[i].AppliedAt = &at
		}
	}
	return nil
}

func (q *memQueue) RecordAttempt(_ context.Context, id uuid.UUID) error {
	for i := range q.actions {
		if q.actions[i].ID == id {
			q.actions[i].Attempts++
		}
	}
	return nil
}

type flakyRemote struct {
	failures int
	pushed   []string
}

func (r *flakyRemote) Upsert(_ context.Context, entity string, _ []byte) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("remote unavailable")
	}
	r.pushed = append(r.pushed, entity)
	return nil
}

func TestPublishQueuesAndPushes(t *testing.T) {
	queue := &memQueue{}
	remote := &flakyRemote{}
	rep := NewReplicator(queue, remote, zerolog.Nop(), time.Second)

	rep.Publish(context.Background(), "disposal", "abc", map[string]string{"k": "v"})

	require.Len(t, queue.actions, 1)
	assert.Equal(t, model.PendingActionApplied, queue.actions[0].Status)
	assert.Equal(t, []string{"disposal"}, remote.pushed)
}

func TestPublishIsIdempotentPerKey(t *testing.T) {
	queue := &memQueue{}
	rep := NewReplicator(queue, &flakyRemote{}, zerolog.Nop(), time.Second)

	rep.Publish(context.Background(), "disposal", "abc", nil)
	rep.Publish(context.Background(), "disposal", "abc", nil)

	assert.Len(t, queue.actions, 1)
}

func TestFlushReplaysInOrder(t *testing.T) {
	queue := &memQueue{}
	remote := &flakyRemote{failures: 2}
	rep := NewReplicator(queue, remote, zerolog.Nop(), time.Second)
	ctx := context.Background()

	rep.Publish(ctx, "disposal", "first", nil)
	rep.Publish(ctx, "complaint", "second", nil)
	assert.Empty(t, remote.pushed)

	require.NoError(t, rep.Flush(ctx))
	assert.Equal(t, []string{"disposal", "complaint"}, remote.pushed)
}

func TestFlushWithoutRemoteIsNoop(t *testing.T) {
	queue := &memQueue{}
	rep := NewReplicator(queue, nil, zerolog.Nop(), time.Second)

	rep.Publish(context.Background(), "disposal", "abc", nil)

	require.Len(t, queue.actions, 1)
	assert.Equal(t, model.PendingActionQueued, queue.actions[0].Status)
}
