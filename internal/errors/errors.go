// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates a missing or rejected authorization token.
	ErrUnauthorized = errors.New("invalid authorization token")

	// ErrInvalidInput indicates the caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// DispatchError represents a failed send to a single recipient during
// group fan-out. Fan-out attempts every recipient; per-recipient
// failures are accumulated with errors.Join by the caller.
type DispatchError struct {
	Recipient string
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to %s failed: %v", e.Recipient, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// NewDispatchError creates a new dispatch error for a recipient.
func NewDispatchError(recipient string, err error) *DispatchError {
	return &DispatchError{Recipient: recipient, Err: err}
}
