// Package pipeline moves rendered profile documents from request handlers to
// object storage through a queue. The Producer enqueues and returns at once;
// the Consumer writes and acknowledges only after a confirmed write.
package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/go-playground/validator/v10"
)

const (
	keyPrefix = "profiles/"
	keySuffix = ".pdf"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// StorageKey maps a subject to its object key. It depends on the subject
// alone so every job for a subject targets the same object.
func StorageKey(subjectID string) (string, error) {
	if subjectID == "" || strings.Contains(subjectID, "/") || strings.Contains(subjectID, "..") {
		return "", fmt.Errorf("%w: invalid subject id %q", common.ErrorValidation, subjectID)
	}
	return keyPrefix + subjectID + keySuffix, nil
}

// Job is the queue message body. Payload travels as standard base64.
type Job struct {
	JobID      string `json:"job_id" validate:"required"`
	SubjectID  string `json:"subject_id" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	StorageKey string `json:"storage_key" validate:"required"`
	Payload    []byte `json:"payload" validate:"required,min=1"`
}

func (j *Job) Encode() (string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("encode job: %w", err)
	}
	return string(b), nil
}

// Decode parses and validates a message body. Every failure wraps
// common.ErrPoisonMessage: no amount of redelivery will fix the body.
func Decode(body string) (*Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(body), &j); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPoisonMessage, err)
	}
	if err := validate.Struct(&j); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPoisonMessage, err)
	}

	key, err := StorageKey(j.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPoisonMessage, err)
	}
	if j.StorageKey != key {
		return nil, fmt.Errorf("%w: storage key %q does not match subject %q", common.ErrPoisonMessage, j.StorageKey, j.SubjectID)
	}
	return &j, nil
}
