package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alexchny/event-relay/internal/jobs"
	"github.com/alexchny/event-relay/internal/ports"
	"go.uber.org/zap"
)

// maxAttendeePages bounds the pagination loop against a cursor that never ends.
const maxAttendeePages = 500

type EventSyncer struct {
	events        ports.EventRepository
	airmeet       ports.AirmeetClient
	lock          ports.DistributedLock
	globalLimiter ports.RateLimiter
	lockTTL       time.Duration
	logger        *zap.Logger
}

func NewEventSyncer(
	events ports.EventRepository,
	airmeet ports.AirmeetClient,
	lock ports.DistributedLock,
	globalLimiter ports.RateLimiter,
	lockTTL time.Duration,
	logger *zap.Logger,
) *EventSyncer {
	return &EventSyncer{
		events:        events,
		airmeet:       airmeet,
		lock:          lock,
		globalLimiter: globalLimiter,
		lockTTL:       lockTTL,
		logger:        logger,
	}
}

// Definition binds SyncEvent to the event.sync job name.
func (s *EventSyncer) Definition() *jobs.Definition[domain.EventSyncPayload] {
	return jobs.NewDefinition(domain.JobEventSync, func(ctx context.Context, p domain.EventSyncPayload) error {
		if err := (domain.SyncRequest{EventID: p.EventID}).Validate(); err != nil {
			return jobs.Permanent(err)
		}

		err := s.SyncEvent(ctx, p.EventID)
		if errors.Is(err, ports.ErrEventNotFound) {
			return jobs.Permanent(err)
		}
		return err
	})
}

func (s *EventSyncer) SyncEvent(ctx context.Context, externalID string) error {
	// acquire lock
	lockKey := fmt.Sprintf("event-relay:lock:event:%s", externalID)
	release, err := s.lock.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire lock for event %s: %w", externalID, err)
	}
	defer func() {
		if err := release(); err != nil {
			s.logger.Warn("failed to release event lock", zap.String("event_id", externalID), zap.Error(err))
		}
	}()

	// global rate limit
	if err := s.globalLimiter.Wait(ctx, "airmeet_api"); err != nil {
		return fmt.Errorf("global rate limit error: %w", err)
	}

	event, err := s.airmeet.GetEvent(ctx, externalID)
	if err != nil {
		return fmt.Errorf("failed to fetch event %s: %w", externalID, err)
	}

	attendees, err := s.fetchAttendees(ctx, externalID)
	if err != nil {
		return err
	}

	eventID, err := s.events.UpsertByExternalID(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", externalID, err)
	}

	emails := make([]string, 0, len(attendees))
	for _, a := range attendees {
		a.EventID = eventID
		emails = append(emails, a.Email)
	}

	if err := s.events.UpsertAttendees(ctx, eventID, attendees); err != nil {
		return fmt.Errorf("failed to save attendees for event %s: %w", externalID, err)
	}

	if err := s.events.RemoveAttendeesNotIn(ctx, eventID, emails); err != nil {
		return fmt.Errorf("failed to prune attendees for event %s: %w", externalID, err)
	}

	if err := s.events.MarkSynced(ctx, eventID); err != nil {
		return fmt.Errorf("failed to mark event %s synced: %w", externalID, err)
	}

	s.logger.Info("event synced",
		zap.String("event_id", externalID),
		zap.String("local_id", eventID.String()),
		zap.Int("attendees", len(attendees)),
	)
	return nil
}

func (s *EventSyncer) fetchAttendees(ctx context.Context, externalID string) ([]*domain.Attendee, error) {
	var (
		all    []*domain.Attendee
		cursor string
	)
	seen := make(map[string]bool)

	for page := 0; page < maxAttendeePages; page++ {
		if err := s.globalLimiter.Wait(ctx, "airmeet_api"); err != nil {
			return nil, fmt.Errorf("global rate limit error: %w", err)
		}

		resp, err := s.airmeet.ListAttendees(ctx, externalID, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch attendees for event %s: %w", externalID, err)
		}

		for _, a := range resp.Attendees {
			email := strings.ToLower(strings.TrimSpace(a.Email))
			if email == "" || seen[email] {
				continue
			}
			seen[email] = true
			a.Email = email
			all = append(all, a)
		}

		// pagination check
		if resp.NextCursor == "" || resp.NextCursor == cursor {
			return all, nil
		}
		cursor = resp.NextCursor
	}

	return nil, fmt.Errorf("attendee pagination for event %s exceeded %d pages", externalID, maxAttendeePages)
}
