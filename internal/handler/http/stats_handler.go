package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	waitlistapp "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/infrastructure/httpserver"
	"github.com/lllypuk/waitlist/internal/middleware"
)

// StatsService defines the stats lookup used by the handler.
type StatsService interface {
	GetStats(ctx context.Context, query waitlistapp.GetStatsQuery) (waitlistapp.StatsResult, error)
}

// StatsHandler serves engagement stats.
type StatsHandler struct {
	service StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(service StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// RegisterRoutes registers stats routes with the router.
func (h *StatsHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().GET("/user/:id/stats", h.Get)
}

// Get handles GET /api/user/:id/stats.
// Provider failures are answered with zero stats, never an error.
func (h *StatsHandler) Get(c echo.Context) error {
	result, err := h.service.GetStats(c.Request().Context(), waitlistapp.GetStatsQuery{
		Identity: middleware.GetIdentity(c),
		UserID:   c.Param("id"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return httpserver.RespondOK(c, toStatsResponse(result.Stats))
}
