package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/waitlist/internal/application/appcore"
	"github.com/lllypuk/waitlist/internal/domain/errs"
)

// Response represents a standard API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents an error in the API response.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError names one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error codes shared by every handler.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeAlreadyExists   = "ALREADY_EXISTS"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternalError   = "INTERNAL_ERROR"
)

// HTTPError lets an error choose its own HTTP representation.
type HTTPError interface {
	error
	HTTPStatus() int
	HTTPCode() string
	HTTPMessage() string
}

// APIError is a ready-made HTTPError that keeps the underlying cause for
// errors.Is/As and logging.
type APIError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

// NewAPIError wraps cause with an explicit HTTP representation.
func NewAPIError(status int, code, message string, cause error) *APIError {
	return &APIError{Status: status, Code: code, Message: message, Cause: cause}
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return e.Code + ": " + e.Cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *APIError) Unwrap() error       { return e.Cause }
func (e *APIError) HTTPStatus() int     { return e.Status }
func (e *APIError) HTTPCode() string    { return e.Code }
func (e *APIError) HTTPMessage() string { return e.Message }

// RespondJSON sends a successful JSON response.
func RespondJSON(c echo.Context, code int, data any) error {
	return c.JSON(code, Response{
		Success: true,
		Data:    data,
	})
}

// RespondOK sends a 200 OK response with data.
func RespondOK(c echo.Context, data any) error {
	return RespondJSON(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data.
func RespondCreated(c echo.Context, data any) error {
	return RespondJSON(c, http.StatusCreated, data)
}

// RespondError sends an error JSON response based on the error type.
func RespondError(c echo.Context, err error) error {
	statusCode, apiError := mapError(err)
	return c.JSON(statusCode, Response{
		Success: false,
		Error:   apiError,
	})
}

// RespondErrorWithCode sends an error JSON response with a specific HTTP status code.
func RespondErrorWithCode(c echo.Context, code int, errorCode, message string) error {
	return c.JSON(code, Response{
		Success: false,
		Error: &Error{
			Code:    errorCode,
			Message: message,
		},
	})
}

// mapError maps application and domain errors to HTTP status codes and API errors.
// Anything unrecognised becomes an opaque 500.
func mapError(err error) (int, *Error) {
	// validation details travel with whatever code the error asks for
	details := validationDetails(err)

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.HTTPStatus(), &Error{
			Code:    httpErr.HTTPCode(),
			Message: httpErr.HTTPMessage(),
			Details: details,
		}
	}

	switch {
	case details != nil, errors.Is(err, appcore.ErrValidationFailed):
		return http.StatusBadRequest, &Error{
			Code:    CodeValidationError,
			Message: "Request validation failed",
			Details: details,
		}

	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest, &Error{
			Code:    CodeValidationError,
			Message: "Invalid input data",
		}

	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, appcore.ErrUnauthorized):
		return http.StatusUnauthorized, &Error{
			Code:    CodeUnauthorized,
			Message: "Authentication required",
		}

	case errors.Is(err, errs.ErrForbidden), errors.Is(err, appcore.ErrForbidden):
		return http.StatusForbidden, &Error{
			Code:    CodeForbidden,
			Message: "Access denied",
		}

	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, &Error{
			Code:    CodeNotFound,
			Message: "The requested resource was not found",
		}

	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict, &Error{
			Code:    CodeAlreadyExists,
			Message: "The resource already exists",
		}

	case errors.Is(err, errs.ErrUnavailable):
		return http.StatusServiceUnavailable, &Error{
			Code:    CodeUnavailable,
			Message: "Service temporarily unavailable",
		}

	default:
		return http.StatusInternalServerError, &Error{
			Code:    CodeInternalError,
			Message: "An internal error occurred",
		}
	}
}

// validationDetails flattens appcore validation errors into response details.
func validationDetails(err error) []FieldError {
	var list appcore.ValidationErrors
	if errors.As(err, &list) && len(list) > 0 {
		out := make([]FieldError, 0, len(list))
		for _, ve := range list {
			out = append(out, FieldError{Field: ve.Field, Message: ve.Message})
		}
		return out
	}

	var single *appcore.ValidationError
	if errors.As(err, &single) {
		return []FieldError{{Field: single.Field, Message: single.Message}}
	}
	return nil
}
