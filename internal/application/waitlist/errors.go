package waitlist

import "errors"

var (
	// ErrUnauthenticated возникает когда запрос пришел без идентичности
	ErrUnauthenticated = errors.New("authentication required")

	// ErrDuplicateEmail is returned when the email already has an entry
	ErrDuplicateEmail = errors.New("email already exists on waitlist")

	// ErrDuplicateUser is returned when the caller already has an entry
	ErrDuplicateUser = errors.New("user already registered on waitlist")

	// ErrEntryNotFound is returned when the caller has no entry
	ErrEntryNotFound = errors.New("user not found on waitlist")

	// ErrStoreFailure wraps any unexpected persistence error
	ErrStoreFailure = errors.New("waitlist store failure")

	// ErrNotAdmin возникает когда операцию пытается выполнить не администратор
	ErrNotAdmin = errors.New("only administrators can perform this operation")
)
