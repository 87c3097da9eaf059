package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	queueURL = "https://sqs.us-east-1.amazonaws.com/123456789012/event-relay-jobs"
	dlqURL   = "https://sqs.us-east-1.amazonaws.com/123456789012/event-relay-dead"
)

type fakeAPI struct {
	sent     []*sqs.SendMessageInput
	received []*sqs.ReceiveMessageInput
	deleted  []*sqs.DeleteMessageInput
	inbox    []types.Message
	sendErr  error
}

func (f *fakeAPI) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeAPI) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.received = append(f.received, in)
	if len(f.inbox) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	msg := f.inbox[0]
	f.inbox = f.inbox[1:]
	return &sqs.ReceiveMessageOutput{Messages: []types.Message{msg}}, nil
}

func (f *fakeAPI) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, in)
	return &sqs.DeleteMessageOutput{}, nil
}

func TestQueue_Enqueue(t *testing.T) {
	api := &fakeAPI{}
	q := NewQueue(api, queueURL, dlqURL)

	job, err := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(context.Background(), job))

	require.Len(t, api.sent, 1)
	in := api.sent[0]
	assert.Equal(t, queueURL, aws.ToString(in.QueueUrl))
	assert.Zero(t, in.DelaySeconds)
	assert.Equal(t, "event.sync", aws.ToString(in.MessageAttributes["JobName"].StringValue))
	assert.Equal(t, job.TraceID, aws.ToString(in.MessageAttributes["TraceID"].StringValue))

	var sent domain.Job
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &sent))
	assert.Equal(t, job.ID, sent.ID)
}

func TestQueue_EnqueueError(t *testing.T) {
	q := NewQueue(&fakeAPI{sendErr: errors.New("throttled")}, queueURL, dlqURL)
	job, _ := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")

	assert.ErrorContains(t, q.Enqueue(context.Background(), job), "throttled")
}

func TestQueue_Dequeue(t *testing.T) {
	job, _ := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")
	body, _ := json.Marshal(job)

	api := &fakeAPI{inbox: []types.Message{{
		MessageId:     aws.String("msg-1"),
		ReceiptHandle: aws.String("receipt-1"),
		Body:          aws.String(string(body)),
	}}}
	q := NewQueue(api, queueURL, dlqURL)

	got, err := q.Dequeue(context.Background(), 45*time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)

	require.Len(t, api.received, 1)
	assert.EqualValues(t, 20, api.received[0].WaitTimeSeconds)
	assert.EqualValues(t, 1, api.received[0].MaxNumberOfMessages)

	require.Len(t, api.deleted, 1)
	assert.Equal(t, "receipt-1", aws.ToString(api.deleted[0].ReceiptHandle))
}

func TestQueue_DequeueUndecodableMovesToDeadLetterQueue(t *testing.T) {
	api := &fakeAPI{inbox: []types.Message{{
		MessageId:     aws.String("msg-2"),
		ReceiptHandle: aws.String("receipt-2"),
		Body:          aws.String("{not json"),
	}}}
	q := NewQueue(api, queueURL, dlqURL)

	got, err := q.Dequeue(context.Background(), time.Second)
	require.Error(t, err)
	assert.Nil(t, got)

	require.Len(t, api.sent, 1)
	assert.Equal(t, dlqURL, aws.ToString(api.sent[0].QueueUrl))
	assert.Equal(t, "{not json", aws.ToString(api.sent[0].MessageBody))
	assert.Contains(t, aws.ToString(api.sent[0].MessageAttributes["DecodeError"].StringValue), "msg-2")

	require.Len(t, api.deleted, 1)
	assert.Equal(t, "receipt-2", aws.ToString(api.deleted[0].ReceiptHandle))
}

func TestQueue_DequeueUndecodableWithoutDeadLetterQueueKeepsMessage(t *testing.T) {
	api := &fakeAPI{inbox: []types.Message{{
		MessageId:     aws.String("msg-3"),
		ReceiptHandle: aws.String("receipt-3"),
		Body:          aws.String("{not json"),
	}}}
	q := NewQueue(api, queueURL, "")

	_, err := q.Dequeue(context.Background(), time.Second)
	require.Error(t, err)

	assert.Empty(t, api.sent)
	assert.Empty(t, api.deleted)
}

func TestQueue_DequeueEmpty(t *testing.T) {
	api := &fakeAPI{}
	q := NewQueue(api, queueURL, dlqURL)

	got, err := q.Dequeue(context.Background(), 2*time.Second)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.EqualValues(t, 2, api.received[0].WaitTimeSeconds)
	assert.Empty(t, api.deleted)
}

func TestQueue_RetryCapsDelay(t *testing.T) {
	api := &fakeAPI{}
	q := NewQueue(api, queueURL, dlqURL)
	job, _ := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")

	require.NoError(t, q.Retry(context.Background(), job, 30*time.Second))
	require.NoError(t, q.Retry(context.Background(), job, time.Hour))

	assert.EqualValues(t, 30, api.sent[0].DelaySeconds)
	assert.EqualValues(t, 900, api.sent[1].DelaySeconds)
}

func TestQueue_DeadLetter(t *testing.T) {
	api := &fakeAPI{}
	q := NewQueue(api, queueURL, dlqURL)
	job, _ := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")

	require.NoError(t, q.DeadLetter(context.Background(), job, errors.New("event not found")))

	require.Len(t, api.sent, 1)
	assert.Equal(t, dlqURL, aws.ToString(api.sent[0].QueueUrl))

	var sent domain.Job
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(api.sent[0].MessageBody)), &sent))
	assert.Equal(t, "event not found", sent.LastError)
}

func TestQueue_DeadLetterWithoutURL(t *testing.T) {
	q := NewQueue(&fakeAPI{}, queueURL, "")
	job, _ := domain.NewEventSyncJob("123e4567-e89b-12d3-a456-426614174000")

	assert.ErrorIs(t, q.DeadLetter(context.Background(), job, nil), ErrNoDeadLetterQueue)
}
