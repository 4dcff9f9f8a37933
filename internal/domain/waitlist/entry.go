package waitlist

import (
	"strings"
	"time"

	"github.com/lllypuk/waitlist/internal/domain/errs"
	"github.com/lllypuk/waitlist/internal/domain/uuid"
)

// UserType is the role an applicant declares on the waitlist
type UserType string

const (
	UserTypeCreator UserType = "creator"
	UserTypeBrand   UserType = "brand"
)

// UserTypes returns the closed set of accepted user types
func UserTypes() []string {
	return []string{string(UserTypeCreator), string(UserTypeBrand)}
}

// IsValid reports whether t belongs to the closed set
func (t UserType) IsValid() bool {
	return t == UserTypeCreator || t == UserTypeBrand
}

// Entry is one waitlist application. It is created once and never modified.
type Entry struct {
	id              uuid.UUID
	userID          string
	email           string
	name            string
	userType        UserType
	companyOrHandle *string
	message         *string
	createdAt       time.Time
}

// Details are the applicant-supplied fields of an entry
type Details struct {
	Email           string
	Name            string
	UserType        UserType
	CompanyOrHandle *string
	Message         *string
}

// NewEntry creates an entry bound to userID. The id and creation time are
// assigned here; callers validate field contents beforehand.
func NewEntry(userID string, d Details) (*Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errs.ErrInvalidInput
	}
	if d.Email == "" || d.Name == "" {
		return nil, errs.ErrInvalidInput
	}
	if !d.UserType.IsValid() {
		return nil, errs.ErrInvalidInput
	}

	return &Entry{
		id:              uuid.NewUUID(),
		userID:          userID,
		email:           d.Email,
		name:            d.Name,
		userType:        d.UserType,
		companyOrHandle: cloneString(d.CompanyOrHandle),
		message:         cloneString(d.Message),
		createdAt:       time.Now().UTC(),
	}, nil
}

// Reconstruct restores an entry from storage
func Reconstruct(
	id uuid.UUID,
	userID, email, name string,
	userType UserType,
	companyOrHandle, message *string,
	createdAt time.Time,
) *Entry {
	return &Entry{
		id:              id,
		userID:          userID,
		email:           email,
		name:            name,
		userType:        userType,
		companyOrHandle: cloneString(companyOrHandle),
		message:         cloneString(message),
		createdAt:       createdAt,
	}
}

// Getters

func (e *Entry) ID() uuid.UUID        { return e.id }
func (e *Entry) UserID() string       { return e.userID }
func (e *Entry) Email() string        { return e.email }
func (e *Entry) Name() string         { return e.name }
func (e *Entry) UserType() UserType   { return e.userType }
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

// CompanyOrHandle returns nil when the applicant did not supply the field.
// An empty string means it was supplied empty.
func (e *Entry) CompanyOrHandle() *string { return cloneString(e.companyOrHandle) }

// Message follows the same absent/empty distinction as CompanyOrHandle
func (e *Entry) Message() *string { return cloneString(e.message) }

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
