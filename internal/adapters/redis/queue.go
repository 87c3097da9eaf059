package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/redis/go-redis/v9"
)

// promoteBatch caps how many due retries move back to the ready list per poll.
const promoteBatch = 100

// promoteScript moves members of the delayed set whose score (due time in
// unix ms) has passed onto the tail of the ready list.
var promoteScript = redis.NewScript(`
	local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", "0", ARGV[2])
	for _, member in ipairs(due) do
		redis.call("ZREM", KEYS[1], member)
		redis.call("RPUSH", KEYS[2], member)
	end
	return #due
`)

// QueueAdapter stores jobs as JSON in three keys: the ready list, a sorted
// set of delayed retries and a dead-letter list. A job popped by a worker
// that then crashes is lost.
type QueueAdapter struct {
	client     *Client
	readyKey   string
	delayedKey string
	deadKey    string
}

func NewQueueAdapter(client *Client, queueKey string) *QueueAdapter {
	return &QueueAdapter{
		client:     client,
		readyKey:   queueKey,
		delayedKey: queueKey + ":delayed",
		deadKey:    queueKey + ":dead",
	}
}

func (q *QueueAdapter) Enqueue(ctx context.Context, job *domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}

	if err := q.client.rdb.RPush(ctx, q.readyKey, data).Err(); err != nil {
		return fmt.Errorf("redis rpush failed: %w", err)
	}
	return nil
}

// Dequeue returns nil, nil when nothing arrives within timeout.
func (q *QueueAdapter) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Job, error) {
	if _, err := q.PromoteDue(ctx, time.Now()); err != nil {
		return nil, err
	}

	result, err := q.client.rdb.BLPop(ctx, timeout, q.readyKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis blpop failed: %w", err)
	}

	var job domain.Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		// keep the raw body; it is already off the ready list
		if pushErr := q.client.rdb.RPush(ctx, q.deadKey, result[1]).Err(); pushErr != nil {
			return nil, fmt.Errorf("failed to unmarshal job: %w (dead-letter failed: %v)", err, pushErr)
		}
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

func (q *QueueAdapter) Retry(ctx context.Context, job *domain.Job, delay time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}

	due := time.Now().Add(delay).UnixMilli()
	if err := q.client.rdb.ZAdd(ctx, q.delayedKey, redis.Z{Score: float64(due), Member: data}).Err(); err != nil {
		return fmt.Errorf("redis zadd failed: %w", err)
	}
	return nil
}

func (q *QueueAdapter) DeadLetter(ctx context.Context, job *domain.Job, cause error) error {
	if cause != nil {
		job.LastError = cause.Error()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}

	if err := q.client.rdb.RPush(ctx, q.deadKey, data).Err(); err != nil {
		return fmt.Errorf("redis rpush failed: %w", err)
	}
	return nil
}

// PromoteDue moves retries due at or before now back onto the ready list.
func (q *QueueAdapter) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	n, err := promoteScript.Run(ctx, q.client.rdb,
		[]string{q.delayedKey, q.readyKey},
		strconv.FormatInt(now.UnixMilli(), 10), promoteBatch,
	).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to promote delayed jobs: %w", err)
	}
	return n, nil
}

// DeadLetters returns up to limit of the oldest dead-lettered jobs. A body
// that never decoded comes back with only LastError set.
func (q *QueueAdapter) DeadLetters(ctx context.Context, limit int) ([]*domain.Job, error) {
	raw, err := q.client.rdb.LRange(ctx, q.deadKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange failed: %w", err)
	}

	jobs := make([]*domain.Job, 0, len(raw))
	for _, item := range raw {
		var job domain.Job
		if err := json.Unmarshal([]byte(item), &job); err != nil {
			job = domain.Job{LastError: fmt.Sprintf("undecodable job: %v", err)}
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

func (q *QueueAdapter) Len(ctx context.Context) (int64, error) {
	return q.client.rdb.LLen(ctx, q.readyKey).Result()
}
