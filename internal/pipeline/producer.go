package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/google/uuid"
)

// StatusQueued is reported once a job is accepted by the queue.
const StatusQueued = "queued"

// Sender submits a message body to a queue.
type Sender interface {
	Send(ctx context.Context, body string) (string, error)
}

// Presigner issues time-limited retrieval URLs for object keys.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Receipt is returned to the caller. The object at URL may not exist yet.
type Receipt struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Key    string `json:"key"`
	JobID  string `json:"job_id"`
}

type Producer struct {
	queue     Sender
	presigner Presigner
	ttl       time.Duration
	log       logging.Logger
	newID     func() string
}

func NewProducer(q Sender, p Presigner, ttl time.Duration, log logging.Logger) *Producer {
	return &Producer{
		queue:     q,
		presigner: p,
		ttl:       ttl,
		log:       log.With("module", "producer"),
		newID:     uuid.NewString,
	}
}

// Enqueue queues artifact for persistence under the subject's key and
// returns a retrieval URL without waiting for the write. The URL is
// presigned before sending, so any error means nothing was enqueued. A queue
// failure wraps common.ErrQueueUnavailable.
func (p *Producer) Enqueue(ctx context.Context, subjectID, email string, artifact []byte) (*Receipt, error) {
	key, err := StorageKey(subjectID)
	if err != nil {
		return nil, err
	}

	job := &Job{
		JobID:      p.newID(),
		SubjectID:  subjectID,
		Email:      email,
		StorageKey: key,
		Payload:    artifact,
	}
	if err := validate.Struct(job); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	body, err := job.Encode()
	if err != nil {
		return nil, err
	}

	url, err := p.presigner.PresignGet(ctx, key, p.ttl)
	if err != nil {
		return nil, fmt.Errorf("retrieval url: %w", err)
	}

	msgID, err := p.queue.Send(ctx, body)
	if err != nil {
		p.log.Error(ctx, "enqueue failed", "job_id", job.JobID, "key", key, "error", err)
		if !errors.Is(err, common.ErrQueueUnavailable) {
			err = fmt.Errorf("%w: %w", common.ErrQueueUnavailable, err)
		}
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	p.log.Info(ctx, "job queued", "job_id", job.JobID, "message_id", msgID, "key", key, "bytes", len(artifact))

	return &Receipt{Status: StatusQueued, URL: url, Key: key, JobID: job.JobID}, nil
}
