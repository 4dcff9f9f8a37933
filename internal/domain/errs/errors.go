package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input data is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when access is not authorized
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an action is forbidden
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable is returned when a backing service cannot be reached
	ErrUnavailable = errors.New("service unavailable")
)

// UniqueViolationError reports which unique field rejected a write.
// It matches ErrAlreadyExists via errors.Is.
type UniqueViolationError struct {
	Field string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique constraint violated on %s", e.Field)
}

func (e *UniqueViolationError) Unwrap() error {
	return ErrAlreadyExists
}

// NewUniqueViolation creates a UniqueViolationError for field
func NewUniqueViolation(field string) error {
	return &UniqueViolationError{Field: field}
}
