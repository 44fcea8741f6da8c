package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Token verification failures.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")

	// Infrastructure errors that the caller may retry.
	ErrQueueUnavailable = errors.New("queue unavailable")
	ErrStoreUnavailable = errors.New("object store unavailable")

	// ErrPoisonMessage marks a queue message that can never be processed.
	ErrPoisonMessage = errors.New("poison message")

	// ErrProvisioning is returned when startup resources cannot be ensured.
	ErrProvisioning = errors.New("provisioning failed")
)

// IsTransient reports whether err belongs to the retryable infrastructure class.
func IsTransient(err error) bool {
	return errors.Is(err, ErrQueueUnavailable) || errors.Is(err, ErrStoreUnavailable)
}
