// Package worker runs background job processors fed by the Redis queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventora/backend/internal/emaillogs"
	"github.com/eventora/backend/pkg/queue"
)

// EmailProcessor processes email jobs: dequeue, send via SMTP, record outcome.
type EmailProcessor struct {
	mailer Mailer
	logs   *emaillogs.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(mailer Mailer, logs *emaillogs.Repository, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{mailer: mailer, logs: logs, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.Recipient == "" {
		return fmt.Errorf("job %s has no recipient", job.ID)
	}

	if err := p.mailer.Send(payload.Recipient, payload.Subject, payload.Body); err != nil {
		return fmt.Errorf("send %s: %w", payload.EmailType, err)
	}

	if err := p.logs.RecordSent(ctx, payload.EmailType, payload.Recipient, payload.Subject); err != nil {
		// The mail went out; only the audit row is missing.
		p.logger.Error("record email log failed", zap.String("job_id", job.ID), zap.Error(err))
	}

	p.logger.Info("email sent",
		zap.String("job_id", job.ID),
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.Recipient))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. Jobs that
// exhaust retries are recorded as failed and dead-lettered.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if job.Attempt+1 >= queue.MaxRetries {
				p.recordFailure(ctx, job, err)
			}
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}

func (p *EmailProcessor) recordFailure(ctx context.Context, job *queue.Job, cause error) {
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return
	}
	if err := p.logs.RecordFailed(ctx, payload.EmailType, payload.Recipient, payload.Subject, cause.Error()); err != nil {
		p.logger.Error("record failed email log failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}
