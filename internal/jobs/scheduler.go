package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alexchny/event-relay/internal/ports"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler periodically enqueues event.sync for every event that has
// not ended yet, so registrations keep flowing in before the event.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	events ports.EventRepository
	queue  ports.JobQueue
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
}

func NewScheduler(spec string, events ports.EventRepository, queue ports.JobQueue, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		spec:   spec,
		events: events,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		n, err := s.EnqueueUpcoming(context.Background())
		if err != nil {
			s.logger.Error("scheduled upcoming event sync failed", zap.Int("enqueued", n), zap.Error(err))
			return
		}
		s.logger.Info("scheduled upcoming event sync", zap.Int("enqueued", n))
	})
	if err != nil {
		return fmt.Errorf("adding schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("sync scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop waits for a running tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("sync scheduler stopped")
}

// EnqueueUpcoming returns how many jobs were enqueued. It keeps going
// past individual enqueue failures and reports the first one.
func (s *Scheduler) EnqueueUpcoming(ctx context.Context) (int, error) {
	now := s.now()

	events, err := s.events.ListUpcoming(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	var (
		enqueued int
		firstErr error
	)
	for _, event := range events {
		if !event.IsUpcoming(now) {
			continue
		}

		job, err := domain.NewEventSyncJob(event.ExternalID)
		if err == nil {
			err = s.queue.Enqueue(ctx, job)
		}
		if err != nil {
			s.logger.Warn("failed to enqueue scheduled sync", zap.String("event_id", event.ExternalID), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to enqueue sync for event %s: %w", event.ExternalID, err)
			}
			continue
		}
		enqueued++
	}

	return enqueued, firstErr
}
