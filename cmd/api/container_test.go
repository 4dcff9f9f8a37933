package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/waitlist/internal/config"
	"github.com/lllypuk/waitlist/internal/infrastructure/httpserver"
	"github.com/lllypuk/waitlist/internal/infrastructure/repository/memory"
	"github.com/lllypuk/waitlist/internal/middleware"
)

func mockConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.App.Mode = config.AppModeMock
	cfg.Log.Level = "error"
	cfg.RateLimit.Limit = 2
	cfg.RateLimit.Burst = 0
	return cfg
}

func newMockContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	c, err := NewContainer(cfg, WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newMockAPI(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	c := newMockContainer(t, cfg)
	server := httpserver.NewServer(httpserver.DefaultServerConfig(), c.Logger)
	SetupRoutes(c, server.Echo())
	return server.Echo()
}

func call(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNewContainer_MockMode(t *testing.T) {
	c := newMockContainer(t, mockConfig())

	assert.Nil(t, c.MongoDB)
	assert.Nil(t, c.Redis)
	assert.IsType(t, &memory.WaitlistRepository{}, c.Repo)
	assert.IsType(t, &middleware.StaticTokenValidator{}, c.TokenValidator)
	assert.IsType(t, &middleware.MemoryRateLimitStore{}, c.RateLimitStore)
	assert.NotNil(t, c.StatsProvider)
	assert.NotNil(t, c.Health)
	assert.True(t, c.Health.IsReady(t.Context()))
}

func TestNewContainer_RateLimitDisabled(t *testing.T) {
	cfg := mockConfig()
	cfg.RateLimit.Enabled = false

	c := newMockContainer(t, cfg)

	assert.Nil(t, c.RateLimitStore)
}

func TestMockAPI_RegistrationFlow(t *testing.T) {
	e := newMockAPI(t, mockConfig())

	rec := call(e, http.MethodPost, "/api/waitlist", "dev-token-u1",
		`{"name":"Alice Lee","email":"alice@x.com","userType":"creator"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(e, http.MethodGet, "/api/waitlist/user", "dev-token-u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(e, http.MethodGet, "/api/profile", "dev-token-u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "complete", profile.Data.Status)

	rec = call(e, http.MethodGet, "/api/admin/waitlist", "dev-admin-root", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMockAPI_RegistrationIsRateLimited(t *testing.T) {
	e := newMockAPI(t, mockConfig())
	body := `{"name":"Bob","email":"bob@x.com","userType":"brand"}`

	// limit is 2 per window; the second attempt is a duplicate but still counts
	assert.Equal(t, http.StatusCreated, call(e, http.MethodPost, "/api/waitlist", "dev-token-u2", body).Code)
	assert.Equal(t, http.StatusConflict, call(e, http.MethodPost, "/api/waitlist", "dev-token-u2", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, call(e, http.MethodPost, "/api/waitlist", "dev-token-u2", body).Code)

	// other endpoints and other callers are not affected
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/api/waitlist/user", "dev-token-u2", "").Code)
	assert.Equal(t, http.StatusCreated, call(e, http.MethodPost, "/api/waitlist", "dev-token-u3",
		`{"name":"Cy","email":"cy@x.com","userType":"brand"}`).Code)
}

func TestMockAPI_OperationalEndpoints(t *testing.T) {
	e := newMockAPI(t, mockConfig())

	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/ready", "", "").Code)

	rec := call(e, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	// the registration counter shows up after the first registration
	call(e, http.MethodPost, "/api/waitlist", "dev-token-m1", `{"name":"M","email":"m@x.com","userType":"brand"}`)
	rec = call(e, http.MethodGet, "/metrics", "", "")
	assert.Contains(t, rec.Body.String(), "waitlist_registrations_total")
}

func TestMockAPI_UnknownRouteUsesEnvelope(t *testing.T) {
	e := newMockAPI(t, mockConfig())

	rec := call(e, http.MethodGet, "/nope", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
