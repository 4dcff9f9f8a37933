package appcore

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors
var (
	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ValidationErrors collects every field that failed validation in one pass.
// errors.Is(err, ErrValidationFailed) holds for any non-empty list.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

// Fields returns the names of the offending fields in order
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fields
}

// CollectValidation merges the results of several Validate* calls.
// It returns nil when every check passed. Errors that are not validation
// errors are returned as is so they are never hidden in the list.
func CollectValidation(checks ...error) error {
	var out ValidationErrors
	for _, err := range checks {
		if err == nil {
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
