// Package httphandler provides HTTP handlers for the waitlist API.
package httphandler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	waitlistapp "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/infrastructure/httpserver"
)

// Error codes specific to the waitlist API.
const (
	CodeDuplicateEmail = "DUPLICATE_EMAIL"
	CodeDuplicateUser  = "DUPLICATE_USER"
	CodeEntryNotFound  = "ENTRY_NOT_FOUND"
)

// respondError maps waitlist errors to API errors; anything else falls back
// to the generic mapping in httpserver.
func respondError(c echo.Context, err error) error {
	// echo errors (413 from the body limit) are rendered by the server's error handler
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return httpserver.RespondError(c, mapWaitlistError(err))
}

func mapWaitlistError(err error) error {
	switch {
	case errors.Is(err, waitlistapp.ErrUnauthenticated):
		return httpserver.NewAPIError(http.StatusUnauthorized, httpserver.CodeUnauthorized,
			"Authentication required", err)
	case errors.Is(err, waitlistapp.ErrNotAdmin):
		return httpserver.NewAPIError(http.StatusForbidden, httpserver.CodeForbidden,
			"Administrator access required", err)
	case errors.Is(err, waitlistapp.ErrDuplicateEmail):
		return httpserver.NewAPIError(http.StatusConflict, CodeDuplicateEmail,
			"Email already exists on the waitlist", err)
	case errors.Is(err, waitlistapp.ErrDuplicateUser):
		return httpserver.NewAPIError(http.StatusConflict, CodeDuplicateUser,
			"User is already registered on the waitlist", err)
	case errors.Is(err, waitlistapp.ErrEntryNotFound):
		return httpserver.NewAPIError(http.StatusNotFound, CodeEntryNotFound,
			"User not found on waitlist", err)
	case errors.Is(err, waitlistapp.ErrStoreFailure):
		// never leak store details
		return httpserver.NewAPIError(http.StatusInternalServerError, httpserver.CodeInternalError,
			"An internal error occurred", err)
	}
	return err
}
