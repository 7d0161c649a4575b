package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"civic-trust-service/internal/model"
)

// Remote is the server-side persistence collaborator. Upserts are keyed by
// entity kind and id; any failure is non-fatal because local verdicts are
// authoritative.
type Remote interface {
	Upsert(ctx context.Context, entity string, payload []byte) error
}

// QueueStore is the durable FIFO of pending sync descriptors.
type QueueStore interface {
	Enqueue(ctx context.Context, action *model.PendingAction) error
	NextQueued(ctx context.Context, limit int) ([]model.PendingAction, error)
	MarkApplied(ctx context.Context, id uuid.UUID, at time.Time) error
	RecordAttempt(ctx context.Context, id uuid.UUID) error
}

type envelope struct {
	Entity string      `json:"entity"`
	ID     string      `json:"id"`
	Record interface{} `json:"record"`
}

// Replicator queues every committed record and pushes the queue to the
// remote best-effort. Records carry their locally computed verdict, so a
// replay never recomputes verification. The idempotency key (entity:id)
// makes re-publishing an already-queued action a no-op.
type Replicator struct {
	queue   QueueStore
	remote  Remote
	log     zerolog.Logger
	timeout time.Duration
}

func NewReplicator(queue QueueStore, remote Remote, log zerolog.Logger, timeout time.Duration) *Replicator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Replicator{queue: queue, remote: remote, log: log, timeout: timeout}
}

// Publish enqueues a committed record and attempts an immediate flush.
// Errors are logged and swallowed: sync never blocks or rolls back the local
// verdict.
func (r *Replicator) Publish(ctx context.Context, entity, id string, record interface{}) {
	payload, err := json.Marshal(envelope{Entity: entity, ID: id, Record: record})
	if err != nil {
		r.log.Error().Err(err).Str("entity", entity).Msg("sync payload marshal failed")
		return
	}

	action := &model.PendingAction{
		IdempotencyKey: entity + ":" + id,
		Entity:         entity,
		Payload:        payload,
		Status:         model.PendingActionQueued,
	}
	if err := r.queue.Enqueue(ctx, action); err != nil {
		r.log.Error().Err(err).Str("entity", entity).Msg("sync enqueue failed")
		return
	}

	if err := r.Flush(ctx); err != nil {
		r.log.Warn().Err(err).Msg("sync flush incomplete, queue retained")
	}
}

// Flush replays the queue in FIFO order. It stops at the first push failure
// to preserve ordering; the remainder replays on the next flush.
func (r *Replicator) Flush(ctx context.Context) error {
	if r.remote == nil {
		return nil
	}

	actions, err := r.queue.NextQueued(ctx, 50)
	if err != nil {
		return err
	}

	for _, action := range actions {
		pushCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.remote.Upsert(pushCtx, action.Entity, action.Payload)
		cancel()

		if err != nil {
			if recErr := r.queue.RecordAttempt(ctx, action.ID); recErr != nil {
				r.log.Error().Err(recErr).Msg("sync attempt bookkeeping failed")
			}
			return fmt.Errorf("push %s: %w", action.IdempotencyKey, err)
		}
		if err := r.queue.MarkApplied(ctx, action.ID, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

// HTTPRemote pushes envelopes to the hosted persistence service.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRemote(baseURL string, timeout time.Duration) *HTTPRemote {
	return &HTTPRemote{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRemote) Upsert(ctx context.Context, entity string, payload []byte) error {
	url := fmt.Sprintf("%s/sync/%s", r.baseURL, entity)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote upsert returned %d", resp.StatusCode)
	}
	return nil
}
