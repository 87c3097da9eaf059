package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(context.Background(), Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	client, _ := newTestClient(t)
	q := NewQueueAdapter(client, "test:jobs")
	ctx := context.Background()

	job, err := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, job))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, domain.JobEventSync, got.Name)
	assert.JSONEq(t, string(job.Payload), string(got.Payload))
}

func TestQueue_FIFO(t *testing.T) {
	client, _ := newTestClient(t)
	q := NewQueueAdapter(client, "test:jobs")
	ctx := context.Background()

	first, _ := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")
	second, _ := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestQueue_DequeueEmpty(t *testing.T) {
	client, _ := newTestClient(t)
	q := NewQueueAdapter(client, "test:jobs")

	got, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQueue_RetryAndPromote(t *testing.T) {
	client, mr := newTestClient(t)
	q := NewQueueAdapter(client, "test:jobs")
	ctx := context.Background()

	job, _ := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")
	job.Attempt = 1
	require.NoError(t, q.Retry(ctx, job, time.Minute))

	members, err := mr.ZMembers("test:jobs:delayed")
	require.NoError(t, err)
	assert.Len(t, members, 1)

	n, err := q.PromoteDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = q.PromoteDue(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, mr.Exists("test:jobs:delayed"))

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, 1, got.Attempt)
}

func TestQueue_DeadLetter(t *testing.T) {
	client, _ := newTestClient(t)
	q := NewQueueAdapter(client, "test:jobs")
	ctx := context.Background()

	job, _ := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")
	require.NoError(t, q.DeadLetter(ctx, job, errors.New("event not found")))

	dead, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, job.ID, dead[0].ID)
	assert.Equal(t, "event not found", dead[0].LastError)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQueue_DequeueUndecodableIsDeadLettered(t *testing.T) {
	client, mr := newTestClient(t)
	q := NewQueueAdapter(client, "test:jobs")
	ctx := context.Background()

	_, err := mr.RPush("test:jobs", "{not json")
	require.NoError(t, err)

	got, err := q.Dequeue(ctx, time.Second)
	require.Error(t, err)
	assert.Nil(t, got)

	raw, err := mr.List("test:jobs:dead")
	require.NoError(t, err)
	assert.Equal(t, []string{"{not json"}, raw)

	dead, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].LastError, "undecodable job")
}

func TestClient_Ping(t *testing.T) {
	client, mr := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestLock_AcquireRelease(t *testing.T) {
	client, mr := newTestClient(t)
	lock := NewLockAdapter(client)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "event-relay:lock:event:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("event-relay:lock:event:1"))

	_, err = lock.Acquire(ctx, "event-relay:lock:event:1", time.Minute)
	assert.ErrorIs(t, err, ErrLockBusy)

	require.NoError(t, release())
	assert.False(t, mr.Exists("event-relay:lock:event:1"))

	release, err = lock.Acquire(ctx, "event-relay:lock:event:1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release())
}

func TestLock_ReleaseAfterTakeover(t *testing.T) {
	client, mr := newTestClient(t)
	lock := NewLockAdapter(client)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "event-relay:lock:event:2", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	releaseOther, err := lock.Acquire(ctx, "event-relay:lock:event:2", time.Minute)
	require.NoError(t, err)

	require.NoError(t, release())
	assert.True(t, mr.Exists("event-relay:lock:event:2"), "stale release must not delete the new holder's lock")

	require.NoError(t, releaseOther())
}

func TestRateLimiter_Allow(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client, 2, time.Minute)

	base := time.Date(2026, 5, 1, 9, 0, 15, 0, time.UTC)
	limiter.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "airmeet_api")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, wait, err := limiter.Allow(ctx, "airmeet_api")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 45*time.Second, wait)

	limiter.now = func() time.Time { return base.Add(time.Minute) }
	allowed, _, err = limiter.Allow(ctx, "airmeet_api")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client, 1, time.Hour)
	limiter.now = func() time.Time { return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC) }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, limiter.Wait(ctx, "airmeet_api"))
	assert.ErrorIs(t, limiter.Wait(ctx, "airmeet_api"), context.DeadlineExceeded)
}
