// Package storage is the persistence gateway (C3): the only package that
// talks to ent directly on behalf of the ingest, batching, queue, and
// progress packages.
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is not found.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyProcessed names the "chat already processed" condition. No
	// function in this module returns it; IsChatProcessed reports the
	// condition as a bool.
	ErrAlreadyProcessed = errors.New("chat already processed")
)

// ValidationError wraps field-specific validation errors raised before any
// database call is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
