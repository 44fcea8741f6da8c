package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/dmitrijs2005/profilevault/internal/queue"
)

// Receiver is the consuming side of the queue.
type Receiver interface {
	// Receive returns (nil, nil) when the long-poll window elapses empty.
	Receive(ctx context.Context) (*queue.Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Writer stores an object, replacing any existing one at key.
type Writer interface {
	Put(ctx context.Context, key string, body []byte) error
}

// Outcome is the result of one poll iteration.
type Outcome int

const (
	OutcomeEmpty Outcome = iota
	OutcomeStored
	OutcomeRetry
	OutcomeDropped
	OutcomeDeadLettered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeStored:
		return "stored"
	case OutcomeRetry:
		return "retry"
	case OutcomeDropped:
		return "dropped"
	case OutcomeDeadLettered:
		return "dead_lettered"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Stats counts poll outcomes since the consumer was created.
type Stats struct {
	Received     int64
	Stored       int64
	Retried      int64
	Dropped      int64
	DeadLettered int64
	AckFailures  int64
}

type ConsumerOption func(*Consumer)

// WithDeadLetter forwards poison messages to dlq instead of dropping them.
func WithDeadLetter(dlq Sender) ConsumerOption {
	return func(c *Consumer) { c.dlq = dlq }
}

// WithWriteTimeout bounds each object store write. Zero disables the bound.
func WithWriteTimeout(d time.Duration) ConsumerOption {
	return func(c *Consumer) { c.writeTimeout = d }
}

// WithReceiveErrorBackoff sets the pause after a failed receive.
// Non-positive values keep the default.
func WithReceiveErrorBackoff(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// Consumer drains the queue into the object store. A message is deleted only
// after its write succeeded; failed writes are left for redelivery.
type Consumer struct {
	queue        Receiver
	store        Writer
	dlq          Sender
	writeTimeout time.Duration
	backoff      time.Duration
	log          logging.Logger
	sleep        func(ctx context.Context, d time.Duration)

	received, stored, retried, dropped, deadLettered, ackFailures atomic.Int64
}

func NewConsumer(q Receiver, store Writer, log logging.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		queue:        q,
		store:        store,
		writeTimeout: 30 * time.Second,
		backoff:      time.Second,
		log:          log.With("module", "consumer"),
		sleep:        sleepCtx,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run polls until ctx is cancelled. Errors inside an iteration never stop
// the loop.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info(ctx, "consumer started", "dead_letter", c.dlq != nil, "write_timeout", c.writeTimeout.String())
	for {
		if ctx.Err() != nil {
			s := c.Stats()
			c.log.Info(context.WithoutCancel(ctx), "consumer stopped",
				"received", s.Received, "stored", s.Stored, "retried", s.Retried,
				"dropped", s.Dropped, "dead_lettered", s.DeadLettered)
			return nil
		}

		if _, err := c.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.log.Error(ctx, "receive failed", "error", err, "backoff", c.backoff.String())
			c.sleep(ctx, c.backoff)
		}
	}
}

// Poll runs one receive-write-acknowledge iteration. The returned error is
// non-nil only when receiving failed. Once a message is received it is
// processed to completion even if ctx is cancelled meanwhile.
func (c *Consumer) Poll(ctx context.Context) (Outcome, error) {
	msg, err := c.queue.Receive(ctx)
	if err != nil {
		return OutcomeEmpty, err
	}
	if msg == nil {
		return OutcomeEmpty, nil
	}
	c.received.Add(1)

	return c.handle(context.WithoutCancel(ctx), msg), nil
}

func (c *Consumer) handle(ctx context.Context, msg *queue.Message) Outcome {
	log := c.log.With("message_id", msg.ID, "receive_count", msg.ReceiveCount)

	job, err := Decode(msg.Body)
	if err != nil {
		return c.poison(ctx, log, msg, err)
	}
	log = log.With("job_id", job.JobID, "key", job.StorageKey)

	if err := c.write(ctx, job); err != nil {
		c.retried.Add(1)
		log.Warn(ctx, "write failed, leaving message for redelivery", "error", err, "transient", common.IsTransient(err))
		return OutcomeRetry
	}

	c.stored.Add(1)
	log.Info(ctx, "artifact stored", "bytes", len(job.Payload))
	c.ack(ctx, log, msg)
	return OutcomeStored
}

func (c *Consumer) write(ctx context.Context, job *Job) error {
	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}

	err := c.store.Put(ctx, job.StorageKey, job.Payload)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, common.ErrStoreUnavailable) {
		return fmt.Errorf("%w: write timed out after %s: %w", common.ErrStoreUnavailable, c.writeTimeout, err)
	}
	return err
}

func (c *Consumer) poison(ctx context.Context, log logging.Logger, msg *queue.Message, cause error) Outcome {
	if c.dlq == nil {
		c.dropped.Add(1)
		log.Error(ctx, "dropping poison message", "error", cause)
		c.ack(ctx, log, msg)
		return OutcomeDropped
	}

	if _, err := c.dlq.Send(ctx, msg.Body); err != nil {
		c.retried.Add(1)
		log.Error(ctx, "dead-letter forward failed, leaving message for redelivery", "error", err, "cause", cause)
		return OutcomeRetry
	}

	c.deadLettered.Add(1)
	log.Warn(ctx, "poison message dead-lettered", "error", cause)
	c.ack(ctx, log, msg)
	return OutcomeDeadLettered
}

// ack deletes the delivery. A failed delete only risks one idempotent
// redelivery, so it is logged and otherwise ignored.
func (c *Consumer) ack(ctx context.Context, log logging.Logger, msg *queue.Message) {
	if err := c.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		c.ackFailures.Add(1)
		log.Warn(ctx, "delete failed, message may be redelivered", "error", err)
	}
}

func (c *Consumer) Stats() Stats {
	return Stats{
		Received:     c.received.Load(),
		Stored:       c.stored.Load(),
		Retried:      c.retried.Load(),
		Dropped:      c.dropped.Load(),
		DeadLettered: c.deadLettered.Load(),
		AckFailures:  c.ackFailures.Load(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
