package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusCreated   EventStatus = "created"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusFinished  EventStatus = "finished"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is a local copy of an Airmeet event.
type Event struct {
	ID         uuid.UUID
	ExternalID string
	Name       string
	StartTime  time.Time
	EndTime    time.Time
	Timezone   string
	Status     EventStatus

	LastSyncedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Event) IsUpcoming(now time.Time) bool {
	if e.Status == EventStatusCancelled {
		return false
	}
	return e.EndTime.After(now)
}

type Attendee struct {
	EventID      uuid.UUID
	Email        string
	Name         string
	RegisteredAt *time.Time
}
