package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	waitlistapp "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/domain/stats"
	httphandler "github.com/lllypuk/waitlist/internal/handler/http"
	"github.com/lllypuk/waitlist/internal/infrastructure/httpserver"
	"github.com/lllypuk/waitlist/internal/infrastructure/repository/memory"
	statsprovider "github.com/lllypuk/waitlist/internal/infrastructure/stats"
	"github.com/lllypuk/waitlist/internal/middleware"
	"github.com/lllypuk/waitlist/internal/service"
)

// testAPI wires the handlers the same way the api command does, over the
// in-memory store and dev-token authentication.
type testAPI struct {
	echo *echo.Echo
	repo *memory.WaitlistRepository
}

func newTestAPI(t *testing.T, provider waitlistapp.StatsProvider) *testAPI {
	t.Helper()
	repo := memory.NewWaitlistRepository()
	if provider == nil {
		provider = statsprovider.NewStaticProvider(stats.Stats{Followers: 120, Collabs: 4})
	}

	svc := service.NewWaitlistService(
		service.WithRegisterUseCase(waitlistapp.NewRegisterUseCase(repo)),
		service.WithGetEntryUseCase(waitlistapp.NewGetEntryUseCase(repo)),
		service.WithGetProfileUseCase(waitlistapp.NewGetProfileUseCase(repo, provider)),
		service.WithGetStatsUseCase(waitlistapp.NewGetStatsUseCase(provider)),
		service.WithListEntriesUseCase(waitlistapp.NewListEntriesUseCase(repo)),
	)

	return &testAPI{echo: newRouter(svc, svc), repo: repo}
}

func newRouter(waitlistSvc httphandler.WaitlistService, statsSvc httphandler.StatsService) *echo.Echo {
	logger := slog.New(slog.DiscardHandler)
	server := httpserver.NewServer(httpserver.DefaultServerConfig(), logger)

	config := httpserver.DefaultRouterConfig()
	config.Logger = logger
	config.LoggingConfig.Logger = logger
	config.RecoveryConfig.Logger = logger
	config.AuthMiddleware = middleware.Auth(middleware.AuthConfig{
		Logger:         logger,
		TokenValidator: middleware.NewStaticTokenValidator(),
	})

	router := httpserver.NewRouter(server.Echo(), config)
	router.RegisterAll(
		httphandler.NewWaitlistHandler(waitlistSvc),
		httphandler.NewStatsHandler(statsSvc),
	)
	return server.Echo()
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	return serve(a.echo, method, path, token, body)
}

func serve(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the response with data kept raw.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   *httpserver.Error `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	env := decode(t, rec)
	require.True(t, env.Success, rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, rec)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return env.Error.Code
}

// failingService fails every call with err.
type failingService struct{ err error }

func (f failingService) Register(context.Context, waitlistapp.RegisterCommand) (waitlistapp.Result, error) {
	return waitlistapp.Result{}, f.err
}

func (f failingService) GetEntry(context.Context, waitlistapp.GetEntryQuery) (waitlistapp.Result, error) {
	return waitlistapp.Result{}, f.err
}

func (f failingService) GetProfile(context.Context, waitlistapp.GetProfileQuery) (waitlistapp.ProfileResult, error) {
	return waitlistapp.ProfileResult{}, f.err
}

func (f failingService) ListEntries(context.Context, waitlistapp.ListEntriesQuery) (waitlistapp.EntriesListResult, error) {
	return waitlistapp.EntriesListResult{}, f.err
}

func (f failingService) GetStats(context.Context, waitlistapp.GetStatsQuery) (waitlistapp.StatsResult, error) {
	return waitlistapp.StatsResult{}, f.err
}

// brokenStats always fails.
type brokenStats struct{}

func (brokenStats) Get(context.Context, string) (stats.Stats, error) {
	return stats.Stats{}, errors.New("stats backend down")
}

const (
	tokenAlice = "dev-token-u1"
	tokenBob   = "dev-token-u2"
	tokenAdmin = "dev-admin-root"
)
