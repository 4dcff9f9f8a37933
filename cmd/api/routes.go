package main

import (
	"github.com/labstack/echo/v4"

	"github.com/lllypuk/waitlist/internal/infrastructure/httpserver"
	"github.com/lllypuk/waitlist/internal/middleware"
)

// SetupRoutes configures all API routes and middleware chains on e.
func SetupRoutes(c *Container, e *echo.Echo) *httpserver.Router {
	corsConfig := middleware.DefaultCORSConfig()
	if len(c.Config.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = c.Config.Server.CORSOrigins
	}

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.Logger = c.Logger

	routerConfig := httpserver.RouterConfig{
		Logger: c.Logger,
		AuthMiddleware: middleware.Auth(middleware.AuthConfig{
			Logger:         c.Logger,
			TokenValidator: c.TokenValidator,
		}),
		CORSConfig:     corsConfig,
		LoggingConfig:  loggingConfig,
		RecoveryConfig: middleware.RecoveryConfig{Logger: c.Logger},
		APIPrefix:      "/api",
		BodyLimit:      c.Config.Server.BodyLimit,
	}

	router := httpserver.NewRouter(e, routerConfig)

	router.RegisterHealthEndpoints(c.Health, c.Config.App.Name)
	router.RegisterMetricsEndpoint(c.Registry)

	router.RegisterAll(
		c.WaitlistHandler,
		c.StatsHandler,
	)

	// Log all registered routes in debug mode
	if c.Config.IsDevelopment() {
		router.PrintRoutes()
	}

	return router
}
