// Package httpserver provides HTTP server infrastructure components.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health status values used by every health endpoint.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latencyMs,omitempty"`
}

// HealthResponse represents the response for health endpoints.
type HealthResponse struct {
	Status     string            `json:"status"`
	Service    string            `json:"service,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
	Components []ComponentStatus `json:"components,omitempty"`
}

// HealthChecker reports readiness of the service's dependencies.
type HealthChecker interface {
	IsReady(ctx context.Context) bool
	GetHealthStatus(ctx context.Context) []ComponentStatus
}

// HealthEndpoints serves /health, /ready and /health/details.
type HealthEndpoints struct {
	checker   HealthChecker
	service   string
	startedAt time.Time
}

// NewHealthEndpoints creates a new HealthEndpoints instance. checker may be nil,
// in which case the service always reports ready.
func NewHealthEndpoints(checker HealthChecker, service string) *HealthEndpoints {
	return &HealthEndpoints{
		checker:   checker,
		service:   service,
		startedAt: time.Now(),
	}
}

// Register mounts the endpoints on e.
func (h *HealthEndpoints) Register(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.GET("/ready", h.handleReady)
	e.GET("/health/details", h.handleHealthDetails)
}

// handleHealth is the liveness check: 200 while the process runs.
func (h *HealthEndpoints) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  StatusHealthy,
		Service: h.service,
	})
}

func (h *HealthEndpoints) handleReady(c echo.Context) error {
	components := h.components(c.Request().Context())

	if overallStatus(components) == StatusUnhealthy {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:     StatusNotReady,
			Components: components,
		})
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:     StatusReady,
		Components: components,
	})
}

func (h *HealthEndpoints) handleHealthDetails(c echo.Context) error {
	components := h.components(c.Request().Context())
	status := overallStatus(components)

	code := http.StatusOK
	if status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, HealthResponse{
		Status:     status,
		Service:    h.service,
		Uptime:     time.Since(h.startedAt).Truncate(time.Second).String(),
		Components: components,
	})
}

func (h *HealthEndpoints) components(ctx context.Context) []ComponentStatus {
	if h.checker == nil {
		return nil
	}
	return h.checker.GetHealthStatus(ctx)
}

// overallStatus: unhealthy beats degraded beats healthy.
func overallStatus(components []ComponentStatus) string {
	status := StatusHealthy
	for _, comp := range components {
		switch comp.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
