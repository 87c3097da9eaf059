package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alexchny/event-relay/internal/jobs"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := jobs.NewRegistry()

	var got domain.EventSyncPayload
	jobs.Register(r, jobs.NewDefinition("event.sync", func(_ context.Context, p domain.EventSyncPayload) error {
		got = p
		return nil
	}))

	h, ok := r.Get("event.sync")
	if !ok {
		t.Fatal("expected handler to be registered")
	}

	payload, _ := json.Marshal(domain.EventSyncPayload{EventID: "123e4567-e89b-12d3-a456-426614174000"})
	if err := h(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.EventID != "123e4567-e89b-12d3-a456-426614174000" {
		t.Errorf("EventID = %q, want %q", got.EventID, "123e4567-e89b-12d3-a456-426614174000")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := jobs.NewRegistry()
	if _, ok := r.Get("nonexistent"); ok {
		t.Fatal("expected no handler for unregistered job")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := jobs.NewRegistry()
	noop := func(_ context.Context, _ struct{}) error { return nil }

	jobs.Register(r, jobs.NewDefinition("event.sync", noop))
	jobs.Register(r, jobs.NewDefinition("attendee.export", noop))

	names := r.Names()
	want := []string{"attendee.export", "event.sync"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestRegistry_InvalidJSONIsPermanent(t *testing.T) {
	r := jobs.NewRegistry()
	jobs.Register(r, jobs.NewDefinition("event.sync", func(_ context.Context, _ domain.EventSyncPayload) error {
		t.Fatal("handler should not be called with invalid JSON")
		return nil
	}))

	h, _ := r.Get("event.sync")
	err := h(context.Background(), []byte("{not json"))
	if !errors.Is(err, jobs.ErrPermanent) {
		t.Fatalf("expected ErrPermanent, got %v", err)
	}
}

func TestPermanent(t *testing.T) {
	if jobs.Permanent(nil) != nil {
		t.Fatal("Permanent(nil) should be nil")
	}

	cause := errors.New("gone")
	err := jobs.Permanent(cause)
	if !errors.Is(err, jobs.ErrPermanent) || !errors.Is(err, cause) {
		t.Fatalf("expected both ErrPermanent and cause in chain, got %v", err)
	}
}
