package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"atasrp/internal/dto"
	"atasrp/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueEmail = "atas:jobs:email"

// listClient is the subset of *redis.Client used by the queue, pool and DLQ.
type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

// Job is the generic envelope for all async tasks.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// ── QueueNotifier ────────────────────────────────────────────────────────────

// QueueNotifier renders messages and enqueues them as e-mail jobs. Accepted
// means the job reached Redis; delivery happens in the worker pool.
type QueueNotifier struct {
	rdb   listClient
	queue string
}

func NewQueueNotifier(rdb listClient) *QueueNotifier {
	return &QueueNotifier{rdb: rdb, queue: QueueEmail}
}

func (q *QueueNotifier) EnviarAlertaVencimento(ctx context.Context, a dto.AlertaVencimento) (bool, error) {
	if err := q.enqueue(ctx, "alerta", infra.MailAlerta(a)); err != nil {
		return false, err
	}
	log.Debug().Str("ata", a.NumeroAta).Str("tipo", a.Tipo).Msg("queue_notifier: alerta enfileirado")
	return true, nil
}

func (q *QueueNotifier) EnviarRelatorio(ctx context.Context, r dto.Relatorio) (bool, error) {
	mail, err := infra.MailRelatorio(r)
	if err != nil {
		return false, err
	}
	if err := q.enqueue(ctx, "relatorio", mail); err != nil {
		return false, err
	}
	return true, nil
}

func (q *QueueNotifier) enqueue(ctx context.Context, jobType string, mail infra.Mail) error {
	data, err := json.Marshal(mail)
	if err != nil {
		return err
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: data, EnqueuedAt: time.Now().UTC()}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.rdb.LPush(ctx, q.queue, encoded).Err(); err != nil {
		return fmt.Errorf("queue: lpush %s: %w", q.queue, err)
	}
	return nil
}

// ── Pool ─────────────────────────────────────────────────────────────────────

// StartWorkerPool launches numWorkers goroutines consuming QueueEmail.
// Each goroutine blocks on BRPOP, zero CPU when idle. The returned func
// blocks until every worker has exited after ctx is cancelled.
func StartWorkerPool(ctx context.Context, rdb listClient, numWorkers int, w *EmailWorker) (wait func()) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, id, w)
		}(i)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
	return wg.Wait
}

func runWorker(ctx context.Context, rdb listClient, id int, w *EmailWorker) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueEmail).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: brpop failed")
					sleepCtx(ctx, time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, w, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, w *EmailWorker, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	log.Debug().Str("job_id", job.ID).Str("type", job.Type).Str("queue", queue).Msg("processing job")
	w.Process(ctx, queue, job)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
