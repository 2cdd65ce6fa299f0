package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")

	ErrStorage          = errors.New("storage unavailable")
	ErrRenderer         = errors.New("content could not be opened")
	ErrNotConfigured    = errors.New("ai credential is not configured")
	ErrRateLimited      = errors.New("too many requests, please wait a moment and try again")
	ErrGenerationFailed = errors.New("generation failed")
	ErrLookupFailed     = errors.New("dictionary lookup failed")
)

// ProviderError carries the remote generation service's status and message.
// It unwraps to ErrRateLimited for 429 and ErrGenerationFailed otherwise.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generation failed (status %d)", e.Status)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	if e.Status == 429 {
		return ErrRateLimited
	}
	return ErrGenerationFailed
}

// Storage tags err as a durable store failure.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
