// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	waitlistapp "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/config"
	httphandler "github.com/lllypuk/waitlist/internal/handler/http"
	"github.com/lllypuk/waitlist/internal/infrastructure/auth"
	"github.com/lllypuk/waitlist/internal/infrastructure/healthcheck"
	"github.com/lllypuk/waitlist/internal/infrastructure/keycloak"
	"github.com/lllypuk/waitlist/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/waitlist/internal/infrastructure/mongodb"
	"github.com/lllypuk/waitlist/internal/infrastructure/repository/memory"
	"github.com/lllypuk/waitlist/internal/infrastructure/repository/mongodb"
	statsprovider "github.com/lllypuk/waitlist/internal/infrastructure/stats"
	"github.com/lllypuk/waitlist/internal/middleware"
	"github.com/lllypuk/waitlist/internal/service"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
)

// Demo ranges for the random stats provider.
const (
	randomMaxFollowers = 10_000
	randomMaxCollabs   = 50
)

// Container holds all application dependencies and manages their lifecycle.
type Container struct {
	// Configuration
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	MongoDB     *mongo.Client
	MongoDBName string
	Redis       *redis.Client
	Registry    *prometheus.Registry
	Health      *healthcheck.Aggregator

	// Waitlist
	Repo          waitlistapp.Repository
	StatsProvider waitlistapp.StatsProvider
	Metrics       *metrics.WaitlistMetrics
	Service       *service.WaitlistService

	// HTTP Handlers
	WaitlistHandler *httphandler.WaitlistHandler
	StatsHandler    *httphandler.StatsHandler

	// Auth and rate limiting
	TokenValidator middleware.TokenValidator
	JWTValidator   keycloak.JWTValidator // for cleanup on shutdown
	DevTokens      *auth.HMACTokens
	RateLimitStore middleware.RateLimitStore
}

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer creates a new dependency injection container.
// The wiring mode (real/mock) is determined by config.App.Mode.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config:   cfg,
		Logger:   slog.Default(),
		Registry: prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logWiringMode()

	if err := c.setupInfrastructure(); err != nil {
		// Clean up any partially initialized resources
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	if err := c.setupTokenValidator(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup token validator: %w", err)
	}

	c.setupMetrics()
	c.setupRepository()
	c.setupStatsProvider()
	c.setupRateLimitStore()
	c.setupHealth()
	c.setupService()
	c.setupHTTPHandlers()

	if err := c.validateWiring(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("wiring validation failed: %w", err)
	}

	return c, nil
}

// logWiringMode logs the current wiring mode configuration.
func (c *Container) logWiringMode() {
	mode := c.Config.App.Mode
	if mode == "" {
		mode = config.AppModeReal
	}

	if c.Config.App.IsMockMode() {
		c.Logger.Warn("container starting in MOCK mode",
			slog.String("mode", string(mode)),
			slog.Bool("is_development", c.Config.IsDevelopment()),
			slog.Bool("is_production", c.Config.IsProduction()),
		)
	} else {
		c.Logger.Info("container starting in REAL mode",
			slog.String("mode", string(mode)),
			slog.Bool("is_development", c.Config.IsDevelopment()),
			slog.Bool("is_production", c.Config.IsProduction()),
		)
	}
}

// validateWiring ensures all required dependencies are properly initialized.
func (c *Container) validateWiring() error {
	var errs []error

	if c.Config.App.IsRealMode() {
		if c.MongoDB == nil {
			errs = append(errs, errors.New("mongodb client not initialized"))
		}
		if c.Redis == nil {
			errs = append(errs, errors.New("redis client not initialized"))
		}
	}
	if c.Repo == nil {
		errs = append(errs, errors.New("waitlist repository not initialized"))
	}
	if c.StatsProvider == nil {
		errs = append(errs, errors.New("stats provider not initialized"))
	}
	if c.TokenValidator == nil {
		errs = append(errs, errors.New("token validator not initialized"))
	}
	if c.WaitlistHandler == nil || c.StatsHandler == nil {
		errs = append(errs, errors.New("http handlers not initialized"))
	}

	if c.Config.IsProduction() {
		if _, isStatic := c.TokenValidator.(*middleware.StaticTokenValidator); isStatic {
			errs = append(errs, errors.New("static token validator is not allowed in production"))
		}
	}

	return errors.Join(errs...)
}

// setupInfrastructure connects to MongoDB and Redis. Mock mode uses neither.
func (c *Container) setupInfrastructure() error {
	if c.Config.App.IsMockMode() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	if err := c.setupRedis(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	return nil
}

// setupMongoDB initializes the MongoDB client and the waitlist indexes.
func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.MongoDB.URI).
		SetMaxPoolSize(c.Config.MongoDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}
	c.MongoDB = client
	c.MongoDBName = c.Config.MongoDB.Database

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.MongoDB.Database),
	)

	// Unique indexes carry the uniqueness rules, so startup fails without them
	db := client.Database(c.Config.MongoDB.Database)
	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, db); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created successfully")

	return nil
}

// setupRedis initializes the Redis client.
func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)

	return nil
}

// setupTokenValidator picks Keycloak, locally signed dev tokens or, in mock
// mode, the static dev-token validator.
func (c *Container) setupTokenValidator() error {
	switch {
	case c.Config.Keycloak.Enabled:
		jwtValidator, err := keycloak.NewJWTValidator(keycloak.JWTValidatorConfig{
			KeycloakURL:     c.Config.Keycloak.URL,
			Realm:           c.Config.Keycloak.Realm,
			ClientID:        c.Config.Keycloak.ClientID,
			Leeway:          c.Config.Keycloak.JWT.Leeway,
			RefreshInterval: c.Config.Keycloak.JWT.RefreshInterval,
			Logger:          c.Logger,
		})
		if err != nil {
			return err
		}

		// Store for cleanup
		c.JWTValidator = jwtValidator
		c.TokenValidator = middleware.NewKeycloakValidatorAdapter(jwtValidator,
			middleware.WithAdminRoles(c.Config.Keycloak.AdminRoles...))

		c.Logger.Info("token validator initialized with Keycloak",
			slog.String("url", c.Config.Keycloak.URL),
			slog.String("realm", c.Config.Keycloak.Realm),
		)

	case c.Config.App.IsMockMode():
		c.Logger.Warn("Keycloak not enabled, using static dev-token validator")
		c.TokenValidator = middleware.NewStaticTokenValidator()

	default:
		tokens, err := auth.NewHMACTokens(auth.HMACConfig{
			Secret: c.Config.Auth.DevTokenSecret,
			Issuer: c.Config.Auth.DevTokenIssuer,
			TTL:    c.Config.Auth.DevTokenTTL,
		})
		if err != nil {
			return err
		}
		c.DevTokens = tokens
		c.TokenValidator = middleware.NewHMACValidatorAdapter(tokens)

		c.Logger.Warn("Keycloak not enabled, accepting locally signed dev tokens",
			slog.String("issuer", c.Config.Auth.DevTokenIssuer),
		)
	}
	return nil
}

// setupMetrics registers waitlist and runtime collectors on a private registry.
func (c *Container) setupMetrics() {
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewWaitlistMetrics(c.Registry)
}

// setupRepository selects the waitlist store.
func (c *Container) setupRepository() {
	if c.Config.App.IsMockMode() {
		c.Repo = memory.NewWaitlistRepository()
		c.Logger.Debug("using in-memory waitlist repository")
		return
	}

	coll := c.MongoDB.Database(c.MongoDBName).Collection(mongodbinfra.CollectionWaitlist)
	c.Repo = mongodb.NewMongoWaitlistRepository(coll, mongodb.WithWaitlistRepoLogger(c.Logger))
}

// setupStatsProvider selects the stats provider. Redis needs a connection,
// so mock mode falls back to random numbers.
func (c *Container) setupStatsProvider() {
	kind := c.Config.Stats.Provider
	if c.Config.App.IsMockMode() && kind == config.StatsProviderRedis {
		kind = config.StatsProviderRandom
	}

	var provider waitlistapp.StatsProvider
	switch kind {
	case config.StatsProviderStatic:
		provider = statsprovider.NewZeroProvider()
	case config.StatsProviderRandom:
		provider = statsprovider.NewRandomProvider(randomMaxFollowers, randomMaxCollabs)
	default:
		provider = statsprovider.NewRedisProvider(c.Redis, c.Config.Stats.RedisKeyPrefix)
	}

	if ttl := c.Config.Stats.CacheTTL; ttl > 0 {
		provider = statsprovider.NewCachedProvider(provider, ttl)
	}
	c.StatsProvider = provider

	c.Logger.Debug("stats provider initialized",
		slog.String("provider", kind),
		slog.Duration("cache_ttl", c.Config.Stats.CacheTTL),
		slog.Duration("timeout", c.Config.Stats.Timeout),
	)
}

// setupRateLimitStore selects the counter backend for registration throttling.
func (c *Container) setupRateLimitStore() {
	if !c.Config.RateLimit.Enabled {
		return
	}
	if c.Redis != nil {
		c.RateLimitStore = middleware.NewRedisRateLimitStore(c.Redis, middleware.DefaultRateLimitPrefix)
		return
	}
	c.RateLimitStore = middleware.NewMemoryRateLimitStore()
}

// setupHealth builds the readiness checks. The store is critical; Redis only
// backs stats and rate limiting, both of which degrade gracefully.
func (c *Container) setupHealth() {
	c.Health = healthcheck.NewAggregator(healthcheck.WithAggregatorLogger(c.Logger))

	if c.MongoDB != nil {
		c.Health.Critical(healthcheck.NewMongoChecker(c.MongoDB))
	} else {
		c.Health.Critical(healthcheck.NewFuncChecker("waitlist_store", func(ctx context.Context) error {
			_, err := c.Repo.Count(ctx)
			return err
		}))
	}

	if c.Redis != nil {
		c.Health.Optional(healthcheck.NewRedisChecker(c.Redis))
	}
}

// setupService wires the use cases behind the waitlist service.
func (c *Container) setupService() {
	opts := []waitlistapp.Option{
		waitlistapp.WithLogger(c.Logger),
		waitlistapp.WithMetrics(c.Metrics),
		waitlistapp.WithStatsTimeout(c.Config.Stats.Timeout),
	}

	c.Service = service.NewWaitlistService(
		service.WithRegisterUseCase(waitlistapp.NewRegisterUseCase(c.Repo, opts...)),
		service.WithGetEntryUseCase(waitlistapp.NewGetEntryUseCase(c.Repo, opts...)),
		service.WithGetProfileUseCase(waitlistapp.NewGetProfileUseCase(c.Repo, c.StatsProvider, opts...)),
		service.WithGetStatsUseCase(waitlistapp.NewGetStatsUseCase(c.StatsProvider, opts...)),
		service.WithListEntriesUseCase(waitlistapp.NewListEntriesUseCase(c.Repo, opts...)),
	)
}

// setupHTTPHandlers creates the HTTP handlers.
func (c *Container) setupHTTPHandlers() {
	var handlerOpts []httphandler.WaitlistHandlerOption
	if c.RateLimitStore != nil {
		handlerOpts = append(handlerOpts, httphandler.WithRegisterMiddleware(
			middleware.RateLimitByEndpoint(middleware.RateLimitConfig{
				Logger:    c.Logger,
				Store:     c.RateLimitStore,
				Limit:     c.Config.RateLimit.Limit,
				Window:    c.Config.RateLimit.Window,
				BurstSize: c.Config.RateLimit.Burst,
			}),
		))
	}

	c.WaitlistHandler = httphandler.NewWaitlistHandler(c.Service, handlerOpts...)
	c.StatsHandler = httphandler.NewStatsHandler(c.Service)
}

// Close releases all resources held by the container.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

	// Close JWT Validator (stops JWKS refresh goroutine)
	if c.JWTValidator != nil {
		if err := c.JWTValidator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("jwt validator close: %w", err))
		} else {
			c.Logger.Debug("jwt validator closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		} else {
			c.Logger.Debug("redis connection closed")
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		} else {
			c.Logger.Debug("mongodb connection closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Logger.Info("all container resources closed")
	return nil
}
