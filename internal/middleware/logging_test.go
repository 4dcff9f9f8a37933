package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/waitlist/internal/application/appcore"
	"github.com/lllypuk/waitlist/internal/middleware"
)

func newLoggingEcho(buf *bytes.Buffer) *echo.Echo {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := echo.New()
	e.Use(middleware.Logging(middleware.LoggingConfig{
		Logger:    logger,
		SkipPaths: []string{"/health"},
	}))
	return e
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	return entry
}

func TestDefaultLoggingConfig(t *testing.T) {
	config := middleware.DefaultLoggingConfig()

	assert.NotNil(t, config.Logger)
	assert.Equal(t, []string{"/health", "/ready", "/metrics"}, config.SkipPaths)
}

func TestLogging_StatusLevels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"ok", http.StatusCreated, "INFO"},
		{"client error", http.StatusConflict, "WARN"},
		{"server error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := newLoggingEcho(&buf)
			e.POST("/api/waitlist", func(c echo.Context) error {
				return c.NoContent(tt.status)
			})

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/waitlist", nil))

			entry := decodeLogLine(t, &buf)
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "HTTP request", entry["msg"])
			assert.Equal(t, "/api/waitlist", entry["route"])
			assert.InDelta(t, float64(tt.status), entry["status"], 0)
		})
	}
}

func TestLogging_HTTPErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	e := newLoggingEcho(&buf)
	e.GET("/boom", func(_ echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream")
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entry := decodeLogLine(t, &buf)
	assert.InDelta(t, float64(http.StatusBadGateway), entry["status"], 0)
	assert.Contains(t, entry["error"], "upstream")
}

func TestLogging_RequestIDPropagation(t *testing.T) {
	var buf bytes.Buffer
	e := newLoggingEcho(&buf)

	var (
		fromEcho      string
		correlationID string
		corrErr       error
	)
	e.GET("/id", func(c echo.Context) error {
		fromEcho = middleware.GetRequestID(c)
		correlationID, corrErr = appcore.GetCorrelationID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/id", nil))

		generated := rec.Header().Get(middleware.RequestIDHeader)
		assert.NotEmpty(t, generated)
		assert.Equal(t, generated, fromEcho)
		require.NoError(t, corrErr)
		assert.Equal(t, generated, correlationID)
	})

	t.Run("forwarded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "req-123", correlationID)
	})

	t.Run("oversized header replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 500))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Len(t, rec.Header().Get(middleware.RequestIDHeader), 36)
	})
}

func TestLogging_SkipPathStillGetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := newLoggingEcho(&buf)
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Empty(t, buf.String())
}

func TestLogging_ReturnsHandlerError(t *testing.T) {
	var buf bytes.Buffer
	sentinel := errors.New("handler failed")
	mw := middleware.Logging(middleware.LoggingConfig{Logger: slog.New(slog.NewJSONHandler(&buf, nil))})

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), httptest.NewRecorder())
	err := mw(func(_ echo.Context) error { return sentinel })(c)

	require.ErrorIs(t, err, sentinel)
}
