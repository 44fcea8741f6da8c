// Package queue wraps an SQS queue with the narrow send/receive/delete surface
// the document pipeline needs.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/dmitrijs2005/profilevault/internal/common"
)

// API is the subset of *sqs.Client used here.
type API interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	GetQueueUrl(ctx context.Context, in *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	CreateQueue(ctx context.Context, in *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
}

// NewClient returns an SQS client for cfg.
func NewClient(cfg aws.Config) *sqs.Client {
	return sqs.NewFromConfig(cfg)
}

// Message is one delivery. ReceiptHandle belongs to this delivery only.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
	ReceiveCount  int
}

// SQSQueue is bound to one queue URL.
type SQSQueue struct {
	client     API
	url        string
	wait       time.Duration
	visibility time.Duration
}

// New binds client to url. wait is the long-poll window (whole seconds, at
// most 20s); a zero visibility keeps the queue's own timeout.
func New(client API, url string, wait, visibility time.Duration) *SQSQueue {
	return &SQSQueue{client: client, url: url, wait: wait, visibility: visibility}
}

func (q *SQSQueue) URL() string { return q.url }

// Send enqueues body and returns the queue-assigned message id.
func (q *SQSQueue) Send(ctx context.Context, body string) (string, error) {
	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.url),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("send message: %w: %w", common.ErrQueueUnavailable, err)
	}
	return aws.ToString(out.MessageId), nil
}

// Receive long-polls for at most one message. It returns (nil, nil) when the
// wait window elapses without a delivery.
func (q *SQSQueue) Receive(ctx context.Context) (*Message, error) {
	in := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.url),
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     int32(q.wait / time.Second),
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	}
	if q.visibility > 0 {
		in.VisibilityTimeout = int32(q.visibility / time.Second)
	}

	out, err := q.client.ReceiveMessage(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("receive message: %w: %w", common.ErrQueueUnavailable, err)
	}
	if len(out.Messages) == 0 {
		return nil, nil
	}

	m := out.Messages[0]
	msg := &Message{
		ID:            aws.ToString(m.MessageId),
		Body:          aws.ToString(m.Body),
		ReceiptHandle: aws.ToString(m.ReceiptHandle),
	}
	if rc, ok := m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]; ok {
		msg.ReceiveCount, _ = strconv.Atoi(rc)
	}
	return msg, nil
}

// Delete acknowledges the delivery identified by receiptHandle.
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// ResolveURL looks up the URL of the named queue and, when create is set,
// creates the queue if it does not exist.
func ResolveURL(ctx context.Context, client API, name string, create bool) (string, error) {
	out, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err == nil {
		return aws.ToString(out.QueueUrl), nil
	}

	var missing *types.QueueDoesNotExist
	if !create || !errors.As(err, &missing) {
		return "", fmt.Errorf("get queue url %q: %w", name, err)
	}

	created, err := client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(name)})
	if err != nil {
		return "", fmt.Errorf("create queue %q: %w", name, err)
	}
	return aws.ToString(created.QueueUrl), nil
}

// Open binds client to url, resolving (and creating) the queue by name when
// url is empty.
func Open(ctx context.Context, client API, url, name string, wait, visibility time.Duration) (*SQSQueue, error) {
	if url == "" {
		var err error
		if url, err = ResolveURL(ctx, client, name, true); err != nil {
			return nil, err
		}
	}
	return New(client, url, wait, visibility), nil
}
