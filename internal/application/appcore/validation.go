package appcore

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// MaxEmailLength is the RFC 5321 limit for a forward path
	MaxEmailLength = 254
)

// ValidateRequired проверяет, что строка не пустая
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

// ValidateMaxLength counts runes, not bytes
func ValidateMaxLength(field, value string, maxLength int) error {
	if utf8.RuneCountInString(value) > maxLength {
		return NewValidationError(field, fmt.Sprintf("must be at most %d characters", maxLength))
	}
	return nil
}

// ValidateOptionalMaxLength is ValidateMaxLength for an optional field
func ValidateOptionalMaxLength(field string, value *string, maxLength int) error {
	if value == nil {
		return nil
	}
	return ValidateMaxLength(field, *value, maxLength)
}

// ValidateEnum проверяет, что значение находится в списке допустимых
func ValidateEnum(field, value string, allowedValues []string) error {
	if slices.Contains(allowedValues, value) {
		return nil
	}
	return NewValidationError(field, fmt.Sprintf("must be one of: %v", allowedValues))
}

// ValidateEmail accepts a bare addr-spec ("a@b.c"). Display-name forms such
// as "Ann <a@b.c>" are rejected.
func ValidateEmail(field, value string) error {
	if value == "" {
		return NewValidationError(field, "email is required")
	}
	if len(value) > MaxEmailLength {
		return NewValidationError(field, fmt.Sprintf("must be at most %d characters", MaxEmailLength))
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return NewValidationError(field, "must be a valid email address")
	}
	at := strings.LastIndexByte(value, '@')
	if !strings.Contains(value[at+1:], ".") {
		return NewValidationError(field, "must be a valid email address")
	}
	return nil
}
