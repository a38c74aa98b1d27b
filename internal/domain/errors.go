package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalService marks failures of a collaborator (VTEC engine, event
	// store, metadata or river service). Generation aborts when it is returned.
	ErrExternalService = errors.New("external service failure")

	// ErrValidation marks invalid forecaster input found by the validation phase.
	ErrValidation = errors.New("invalid user input")

	// ErrNotOwner is returned when a user edits a probabilistic object owned by someone else.
	ErrNotOwner = errors.New("object is owned by another user")
)

// ExternalServiceError wraps err from the named collaborator with ErrExternalService.
func ExternalServiceError(service string, err error) error {
	return fmt.Errorf("%s: %w: %w", service, ErrExternalService, err)
}

// ValidationError reports why an event failed validation.
type ValidationError struct {
	EventID string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("event %s: %s", e.EventID, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
