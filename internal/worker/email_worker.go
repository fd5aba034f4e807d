package worker

// email_worker.go
// Processes e-mail jobs from QueueEmail: alerts and reports rendered by the
// QueueNotifier, delivered through the SMTP Mailer with exponential backoff.
// Jobs that exhaust their attempts go to the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"atasrp/internal/infra"
	"atasrp/internal/metrics"

	"github.com/rs/zerolog/log"
)

const MaxEmailAttempts = 3

// retryBaseDelay is the first backoff step: 1s, 2s, 4s …
var retryBaseDelay = time.Second

type mailSender interface {
	Send(ctx context.Context, m infra.Mail) error
}

type EmailWorker struct {
	mailer      mailSender
	rdb         listClient
	maxAttempts int
}

func NewEmailWorker(mailer mailSender, rdb listClient) *EmailWorker {
	return &EmailWorker{mailer: mailer, rdb: rdb, maxAttempts: MaxEmailAttempts}
}

// Process delivers one job. It never returns an error: failures are logged,
// counted and parked in the DLQ.
func (w *EmailWorker) Process(ctx context.Context, queue string, job Job) {
	var mail infra.Mail
	if err := json.Unmarshal(job.Payload, &mail); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("email_worker: invalid payload")
		metrics.EmailJobs.WithLabelValues("invalido").Inc()
		SendToDLQ(ctx, w.rdb, queue, job.Type, job.Payload, "invalid payload: "+err.Error(), 0)
		return
	}
	if len(mail.Para) == 0 {
		log.Warn().Str("job_id", job.ID).Msg("email_worker: no recipients, skipping")
		metrics.EmailJobs.WithLabelValues("ignorado").Inc()
		return
	}

	attempts := 0
	err := withRetry(ctx, w.maxAttempts, func(attempt int) error {
		attempts = attempt + 1
		return w.mailer.Send(ctx, mail)
	})
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Str("assunto", mail.Assunto).
			Int("attempts", attempts).Msg("email_worker: failed to send email")
		metrics.EmailJobs.WithLabelValues("falha").Inc()
		SendToDLQ(ctx, w.rdb, queue, job.Type, job.Payload,
			fmt.Sprintf("max attempts (%d) exceeded: %s", w.maxAttempts, err), attempts)
		return
	}
	metrics.EmailJobs.WithLabelValues("enviado").Inc()
	log.Info().Str("job_id", job.ID).Str("para", strings.Join(mail.Para, ",")).
		Msg("email_worker: e-mail sent")
}

func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * retryBaseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
