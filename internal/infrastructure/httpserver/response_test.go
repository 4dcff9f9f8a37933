package httpserver_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/waitlist/internal/application/appcore"
	"github.com/lllypuk/waitlist/internal/domain/errs"
	"github.com/lllypuk/waitlist/internal/infrastructure/httpserver"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httpserver.Response {
	t.Helper()
	var resp httpserver.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRespondCreated(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, httpserver.RespondCreated(c, map[string]string{"id": "42"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":"42"}}`, rec.Body.String())
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("lookup: %w", errs.ErrNotFound), http.StatusNotFound, httpserver.CodeNotFound},
		{"already exists", errs.NewUniqueViolation("email"), http.StatusConflict, httpserver.CodeAlreadyExists},
		{"invalid input", errs.ErrInvalidInput, http.StatusBadRequest, httpserver.CodeValidationError},
		{"unauthorized", errs.ErrUnauthorized, http.StatusUnauthorized, httpserver.CodeUnauthorized},
		{"forbidden", appcore.ErrForbidden, http.StatusForbidden, httpserver.CodeForbidden},
		{"unavailable", errs.ErrUnavailable, http.StatusServiceUnavailable, httpserver.CodeUnavailable},
		{"unknown", errors.New("mongo: connection reset by peer"), http.StatusInternalServerError, httpserver.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()

			require.NoError(t, httpserver.RespondError(c, tt.err))

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotContains(t, resp.Error.Message, "mongo")
		})
	}
}

func TestRespondError_ValidationDetails(t *testing.T) {
	err := appcore.CollectValidation(
		appcore.NewValidationError("email", "must be a valid email address"),
		nil,
		appcore.NewValidationError("userType", "must be one of: creator, brand"),
	)
	c, rec := newContext()

	require.NoError(t, httpserver.RespondError(c, fmt.Errorf("register: %w", err)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, httpserver.CodeValidationError, resp.Error.Code)
	assert.Equal(t, []httpserver.FieldError{
		{Field: "email", Message: "must be a valid email address"},
		{Field: "userType", Message: "must be one of: creator, brand"},
	}, resp.Error.Details)
}

func TestRespondError_HTTPErrorWins(t *testing.T) {
	cause := errors.New("email already exists on waitlist")
	apiErr := httpserver.NewAPIError(http.StatusConflict, "DUPLICATE_EMAIL", "Email already on the waitlist", cause)
	c, rec := newContext()

	require.NoError(t, httpserver.RespondError(c, fmt.Errorf("wrapped: %w", apiErr)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "DUPLICATE_EMAIL", resp.Error.Code)
	assert.Equal(t, "Email already on the waitlist", resp.Error.Message)
	assert.ErrorIs(t, apiErr, cause)
}

func TestRespondErrorWithCode(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, httpserver.RespondErrorWithCode(c, http.StatusTeapot, "TEAPOT", "short and stout"))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"TEAPOT","message":"short and stout"}}`, rec.Body.String())
}
