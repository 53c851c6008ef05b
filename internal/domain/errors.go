// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// ValidationError describes a single field that failed validation.
// It wraps ErrValidation so callers can test with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// validationSentinels are the entity validation failures caused by caller input.
var validationSentinels = []error{
	ErrEmptyUserName,
	ErrInvalidUserName,
	ErrEmptyEmail,
	ErrInvalidEmail,
	ErrEmptyTaskTitle,
	ErrTaskTitleTooLong,
	ErrEmptyTaskDescription,
	ErrEmptyDueDate,
	ErrInvalidPriority,
	ErrInvalidStatus,
	ErrInvalidAssigneeID,
	ErrInvalidSortField,
	ErrInvalidSortOrder,
}

// ValidationCause returns the validation failure behind err: the
// ValidationError itself, or the matching entity sentinel. It returns nil
// when err is not caused by invalid input.
func ValidationCause(err error) error {
	if err == nil {
		return nil
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	for _, target := range validationSentinels {
		if errors.Is(err, target) {
			return target
		}
	}
	if errors.Is(err, ErrValidation) {
		return ErrValidation
	}
	return nil
}

// IsValidationError reports whether err stems from invalid caller input.
func IsValidationError(err error) bool {
	return ValidationCause(err) != nil
}
