// Package uuid wraps github.com/google/uuid for entry identifiers. Ids are
// kept as canonical lower-case strings so they round-trip through the store
// unchanged.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// UUID is a canonical RFC 4122 identifier
type UUID string

// NewUUID generates a random (v4) UUID
func NewUUID() UUID {
	return UUID(uuid.New().String())
}

// ParseUUID accepts any form google/uuid understands and returns the
// canonical lower-case representation.
func ParseUUID(s string) (UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	if parsed == uuid.Nil {
		return "", fmt.Errorf("invalid uuid %q: nil uuid", s)
	}
	return UUID(parsed.String()), nil
}

func (u UUID) String() string {
	return string(u)
}

// IsZero reports whether the UUID is unset
func (u UUID) IsZero() bool {
	return u == ""
}
