package ports

//go:generate mockgen -source=repositories.go -destination=../mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/google/uuid"
)

type EventRepository interface {
	// UpsertByExternalID inserts or refreshes the event and returns its local id.
	UpsertByExternalID(ctx context.Context, event *domain.Event) (uuid.UUID, error)
	UpsertAttendees(ctx context.Context, eventID uuid.UUID, attendees []*domain.Attendee) error
	// RemoveAttendeesNotIn deletes registrations whose email is not in keep.
	RemoveAttendeesNotIn(ctx context.Context, eventID uuid.UUID, keep []string) error
	MarkSynced(ctx context.Context, id uuid.UUID) error
	ListRecent(ctx context.Context, limit int) ([]*domain.Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error)
}
