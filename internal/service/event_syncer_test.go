package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alexchny/event-relay/internal/jobs"
	"github.com/alexchny/event-relay/internal/mocks"
	"github.com/alexchny/event-relay/internal/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const testEventID = "123e4567-e89b-12d3-a456-426614174000"

type syncerMocks struct {
	events  *mocks.MockEventRepository
	airmeet *mocks.MockAirmeetClient
	lock    *mocks.MockDistributedLock
	limiter *mocks.MockRateLimiter
}

func newTestSyncer(t *testing.T) (*EventSyncer, syncerMocks) {
	ctrl := gomock.NewController(t)
	m := syncerMocks{
		events:  mocks.NewMockEventRepository(ctrl),
		airmeet: mocks.NewMockAirmeetClient(ctrl),
		lock:    mocks.NewMockDistributedLock(ctrl),
		limiter: mocks.NewMockRateLimiter(ctrl),
	}
	s := NewEventSyncer(m.events, m.airmeet, m.lock, m.limiter, time.Minute, zap.NewNop())
	return s, m
}

func (m syncerMocks) expectLock(released *bool) {
	m.lock.EXPECT().
		Acquire(gomock.Any(), "event-relay:lock:event:"+testEventID, time.Minute).
		Return(func() error { *released = true; return nil }, nil)
}

func TestSyncEvent_Success(t *testing.T) {
	s, m := newTestSyncer(t)
	localID := uuid.New()
	released := false

	m.expectLock(&released)
	m.limiter.EXPECT().Wait(gomock.Any(), "airmeet_api").Return(nil).Times(3)

	event := &domain.Event{ExternalID: testEventID, Name: "Launch Week"}
	m.airmeet.EXPECT().GetEvent(gomock.Any(), testEventID).Return(event, nil)
	gomock.InOrder(
		m.airmeet.EXPECT().ListAttendees(gomock.Any(), testEventID, "").Return(&ports.AttendeePage{
			Attendees: []*domain.Attendee{
				{Email: "Ada@Example.com", Name: "Ada"},
				{Email: "", Name: "No Email"},
			},
			NextCursor: "page-2",
		}, nil),
		m.airmeet.EXPECT().ListAttendees(gomock.Any(), testEventID, "page-2").Return(&ports.AttendeePage{
			Attendees: []*domain.Attendee{
				{Email: "ada@example.com", Name: "Ada again"},
				{Email: "grace@example.com", Name: "Grace"},
			},
		}, nil),
	)

	m.events.EXPECT().UpsertByExternalID(gomock.Any(), event).Return(localID, nil)
	m.events.EXPECT().UpsertAttendees(gomock.Any(), localID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, attendees []*domain.Attendee) error {
			require.Len(t, attendees, 2)
			assert.Equal(t, "ada@example.com", attendees[0].Email)
			assert.Equal(t, "grace@example.com", attendees[1].Email)
			for _, a := range attendees {
				assert.Equal(t, localID, a.EventID)
			}
			return nil
		})
	m.events.EXPECT().RemoveAttendeesNotIn(gomock.Any(), localID, []string{"ada@example.com", "grace@example.com"}).Return(nil)
	m.events.EXPECT().MarkSynced(gomock.Any(), localID).Return(nil)

	require.NoError(t, s.SyncEvent(context.Background(), testEventID))
	assert.True(t, released)
}

func TestSyncEvent_LockBusy(t *testing.T) {
	s, m := newTestSyncer(t)
	m.lock.EXPECT().Acquire(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("lock held"))

	err := s.SyncEvent(context.Background(), testEventID)
	assert.ErrorContains(t, err, "failed to acquire lock")
}

func TestSyncEvent_RepeatedCursorStops(t *testing.T) {
	s, m := newTestSyncer(t)
	localID := uuid.New()
	released := false

	m.expectLock(&released)
	m.limiter.EXPECT().Wait(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.airmeet.EXPECT().GetEvent(gomock.Any(), testEventID).Return(&domain.Event{ExternalID: testEventID}, nil)
	m.airmeet.EXPECT().ListAttendees(gomock.Any(), testEventID, "").Return(&ports.AttendeePage{NextCursor: "same"}, nil)
	m.airmeet.EXPECT().ListAttendees(gomock.Any(), testEventID, "same").Return(&ports.AttendeePage{NextCursor: "same"}, nil)

	m.events.EXPECT().UpsertByExternalID(gomock.Any(), gomock.Any()).Return(localID, nil)
	m.events.EXPECT().UpsertAttendees(gomock.Any(), localID, gomock.Len(0)).Return(nil)
	m.events.EXPECT().RemoveAttendeesNotIn(gomock.Any(), localID, gomock.Len(0)).Return(nil)
	m.events.EXPECT().MarkSynced(gomock.Any(), localID).Return(nil)

	require.NoError(t, s.SyncEvent(context.Background(), testEventID))
	assert.True(t, released)
}

func TestSyncEvent_AirmeetErrorReleasesLock(t *testing.T) {
	s, m := newTestSyncer(t)
	released := false

	m.expectLock(&released)
	m.limiter.EXPECT().Wait(gomock.Any(), gomock.Any()).Return(nil)
	m.airmeet.EXPECT().GetEvent(gomock.Any(), testEventID).Return(nil, errors.New("502 bad gateway"))

	err := s.SyncEvent(context.Background(), testEventID)
	assert.ErrorContains(t, err, "failed to fetch event")
	assert.True(t, released)
}

func TestDefinition_InvalidPayloadIsPermanent(t *testing.T) {
	s, _ := newTestSyncer(t)

	registry := jobs.NewRegistry()
	jobs.Register(registry, s.Definition())
	handler, ok := registry.Get(domain.JobEventSync)
	require.True(t, ok)

	err := handler(context.Background(), []byte(`{"eventId":"nope"}`))
	assert.ErrorIs(t, err, jobs.ErrPermanent)
}

func TestDefinition_NotFoundIsPermanent(t *testing.T) {
	s, m := newTestSyncer(t)
	released := false

	m.expectLock(&released)
	m.limiter.EXPECT().Wait(gomock.Any(), gomock.Any()).Return(nil)
	m.airmeet.EXPECT().GetEvent(gomock.Any(), testEventID).Return(nil, ports.ErrEventNotFound)

	registry := jobs.NewRegistry()
	jobs.Register(registry, s.Definition())
	handler, _ := registry.Get(domain.JobEventSync)

	err := handler(context.Background(), []byte(`{"eventId":"`+testEventID+`"}`))
	assert.ErrorIs(t, err, jobs.ErrPermanent)
	assert.ErrorIs(t, err, ports.ErrEventNotFound)
}
