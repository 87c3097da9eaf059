package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	// SQS caps long polling at 20s and message delay at 15 minutes.
	maxWaitSeconds  = 20
	maxDelaySeconds = 900
)

var ErrNoDeadLetterQueue = errors.New("no SQS dead-letter queue configured")

// API is the subset of *sqs.Client the queue uses.
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// NewClient builds an SQS client from the default AWS credential chain.
func NewClient(ctx context.Context) (*sqs.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

// Queue delivers jobs through SQS. Messages are deleted as soon as they are
// received, matching the at-most-once pop of the Redis queue; retries are
// re-sent with DelaySeconds.
type Queue struct {
	api           API
	queueURL      string
	deadLetterURL string
}

func NewQueue(api API, queueURL, deadLetterURL string) *Queue {
	return &Queue{
		api:           api,
		queueURL:      queueURL,
		deadLetterURL: deadLetterURL,
	}
}

func (q *Queue) Enqueue(ctx context.Context, job *domain.Job) error {
	return q.send(ctx, q.queueURL, job, 0)
}

// Dequeue returns nil, nil when no message arrives within timeout.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Job, error) {
	wait := int32(timeout / time.Second)
	if wait > maxWaitSeconds {
		wait = maxWaitSeconds
	}

	out, err := q.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(q.queueURL),
		MaxNumberOfMessages:   1,
		WaitTimeSeconds:       wait,
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive message from SQS: %w", err)
	}
	if len(out.Messages) == 0 {
		return nil, nil
	}

	msg := out.Messages[0]
	body := aws.ToString(msg.Body)

	var job domain.Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		decodeErr := fmt.Errorf("failed to unmarshal job from message %s: %w", aws.ToString(msg.MessageId), err)
		if q.deadLetterURL == "" {
			// stays on the queue for its redrive policy
			return nil, decodeErr
		}
		if err := q.sendRaw(ctx, q.deadLetterURL, body, decodeErr); err != nil {
			return nil, fmt.Errorf("%w (dead-letter failed: %v)", decodeErr, err)
		}
		if err := q.delete(ctx, msg); err != nil {
			return nil, err
		}
		return nil, decodeErr
	}

	if err := q.delete(ctx, msg); err != nil {
		return nil, err
	}

	return &job, nil
}

func (q *Queue) delete(ctx context.Context, msg types.Message) error {
	if _, err := q.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		return fmt.Errorf("failed to delete message from SQS: %w", err)
	}
	return nil
}

// sendRaw moves a body that is not a job envelope to queueURL unchanged.
func (q *Queue) sendRaw(ctx context.Context, queueURL, body string, cause error) error {
	_, err := q.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"DecodeError": {
				StringValue: aws.String(cause.Error()),
				DataType:    aws.String("String"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}
	return nil
}

func (q *Queue) Retry(ctx context.Context, job *domain.Job, delay time.Duration) error {
	seconds := int32(delay / time.Second)
	if seconds > maxDelaySeconds {
		seconds = maxDelaySeconds
	}
	return q.send(ctx, q.queueURL, job, seconds)
}

func (q *Queue) DeadLetter(ctx context.Context, job *domain.Job, cause error) error {
	if q.deadLetterURL == "" {
		return ErrNoDeadLetterQueue
	}
	if cause != nil {
		job.LastError = cause.Error()
	}
	return q.send(ctx, q.deadLetterURL, job, 0)
}

func (q *Queue) send(ctx context.Context, queueURL string, job *domain.Job, delaySeconds int32) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}

	_, err = q.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(queueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: delaySeconds,
		MessageAttributes: map[string]types.MessageAttributeValue{
			"JobName": {
				StringValue: aws.String(job.Name),
				DataType:    aws.String("String"),
			},
			"TraceID": {
				StringValue: aws.String(job.TraceID),
				DataType:    aws.String("String"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
