package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const JobEventSync = "event.sync"

// Job is the envelope written to the queue. Payload is the JSON the
// registered handler for Name decodes.
type Job struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Payload     json.RawMessage `json:"payload"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts,omitempty"`
	TraceID     string          `json:"trace_id"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	LastError   string          `json:"last_error,omitempty"`
}

func NewJob(name string, payload any) (*Job, error) {
	if name == "" {
		return nil, fmt.Errorf("job name cannot be empty")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for job %s: %w", name, err)
	}

	return &Job{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    data,
		TraceID:    uuid.NewString(),
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// CanRetry reports whether another attempt is allowed. The job's own
// MaxAttempts wins over defaultMax when set.
func (j *Job) CanRetry(defaultMax int) bool {
	maxAttempts := defaultMax
	if j.MaxAttempts > 0 {
		maxAttempts = j.MaxAttempts
	}
	return j.Attempt+1 < maxAttempts
}

// EventSyncPayload is the body of an event.sync job.
type EventSyncPayload struct {
	EventID string `json:"eventId"`
}

func NewEventSyncJob(eventID string) (*Job, error) {
	return NewJob(JobEventSync, EventSyncPayload{EventID: eventID})
}
