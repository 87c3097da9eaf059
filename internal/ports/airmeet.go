package ports

//go:generate mockgen -source=airmeet.go -destination=../mocks/mock_airmeet.go -package=mocks

import (
	"context"
	"errors"

	"github.com/alexchny/event-relay/internal/domain"
)

var ErrEventNotFound = errors.New("airmeet event not found")

type AttendeePage struct {
	Attendees  []*domain.Attendee
	NextCursor string
}

// AirmeetClient returns events without a local ID; the repository assigns it.
type AirmeetClient interface {
	GetEvent(ctx context.Context, externalID string) (*domain.Event, error)
	ListAttendees(ctx context.Context, externalID, cursor string) (*AttendeePage, error)
}
