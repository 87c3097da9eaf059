package service

import (
	"context"
	"fmt"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alexchny/event-relay/internal/ports"
	"go.uber.org/zap"
)

// SyncRequester turns a validated operator request into exactly one
// event.sync job. Submitting the same id twice enqueues two jobs.
type SyncRequester struct {
	queue  ports.JobQueue
	logger *zap.Logger
}

func NewSyncRequester(q ports.JobQueue, logger *zap.Logger) *SyncRequester {
	return &SyncRequester{
		queue:  q,
		logger: logger,
	}
}

// RequestSync returns a *domain.ValidationError without touching the
// queue when the id is malformed.
func (s *SyncRequester) RequestSync(ctx context.Context, req domain.SyncRequest) (*domain.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := domain.NewEventSyncJob(req.EventID)
	if err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s job: %w", job.Name, err)
	}

	s.logger.Info("sync job enqueued",
		zap.String("job_id", job.ID),
		zap.String("event_id", req.EventID),
		zap.String("trace_id", job.TraceID),
	)
	return job, nil
}
