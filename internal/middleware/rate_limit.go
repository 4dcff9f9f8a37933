package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Rate limit defaults.
const (
	DefaultRateLimit       = 100
	DefaultRateLimitWindow = time.Minute
	DefaultBurstSize       = 10
	DefaultRateLimitPrefix = "waitlist:ratelimit:"

	defaultRateLimitMessage = "Too many requests. Please try again later."
)

// RateLimitStore counts requests per key inside a fixed window.
type RateLimitStore interface {
	// Increment bumps the counter for key, starting a new window when the key is new.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// TTL returns how long the current window for key has left.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	Logger *slog.Logger

	// Store is the counter backend. Nil disables rate limiting.
	Store RateLimitStore

	Limit     int
	Window    time.Duration
	BurstSize int

	// KeyFunc derives the bucket. Defaults to the caller's user id, then IP.
	KeyFunc func(c echo.Context) string

	SkipPaths []string
	Message   string
}

// DefaultRateLimitConfig returns a RateLimitConfig with sensible defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Logger:    slog.Default(),
		Limit:     DefaultRateLimit,
		Window:    DefaultRateLimitWindow,
		BurstSize: DefaultBurstSize,
		SkipPaths: []string{"/health", "/ready", "/metrics"},
		Message:   defaultRateLimitMessage,
	}
}

// RateLimit returns a fixed-window rate limiting middleware. Store failures
// let the request through.
func RateLimit(config RateLimitConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Limit <= 0 {
		config.Limit = DefaultRateLimit
	}
	if config.Window <= 0 {
		config.Window = DefaultRateLimitWindow
	}
	if config.Message == "" {
		config.Message = defaultRateLimitMessage
	}
	if config.KeyFunc == nil {
		config.KeyFunc = callerKey
	}

	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}
	totalLimit := int64(config.Limit + config.BurstSize)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if _, ok := skipPaths[path]; ok || config.Store == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			key := config.KeyFunc(c)

			count, err := config.Store.Increment(ctx, key, config.Window)
			if err != nil {
				config.Logger.Error("failed to increment rate limit counter",
					slog.String("key", key),
					slog.String("error", err.Error()),
				)
				return next(c)
			}

			header := c.Response().Header()
			header.Set("X-Ratelimit-Limit", strconv.FormatInt(totalLimit, 10))
			header.Set("X-Ratelimit-Remaining", strconv.FormatInt(max(totalLimit-count, 0), 10))

			ttl, ttlErr := config.Store.TTL(ctx, key)
			if ttlErr == nil && ttl > 0 {
				header.Set("X-Ratelimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
			}

			if count > totalLimit {
				config.Logger.Warn("rate limit exceeded",
					slog.String("key", key),
					slog.Int64("count", count),
					slog.Int64("limit", totalLimit),
					slog.String("path", path),
				)
				return respondRateLimitError(c, config.Message, ttl)
			}

			return next(c)
		}
	}
}

// RateLimitByEndpoint buckets the caller per method and route.
func RateLimitByEndpoint(config RateLimitConfig) echo.MiddlewareFunc {
	base := config.KeyFunc
	if base == nil {
		base = callerKey
	}
	config.KeyFunc = func(c echo.Context) string {
		return fmt.Sprintf("endpoint:%s:%s:%s", c.Request().Method, c.Path(), base(c))
	}
	return RateLimit(config)
}

func callerKey(c echo.Context) string {
	if userID := GetUserID(c); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.RealIP()
}

// respondRateLimitError sends a rate limit exceeded error response.
func respondRateLimitError(c echo.Context, message string, retryAfter time.Duration) error {
	seconds := int64(retryAfter.Seconds())
	if seconds > 0 {
		c.Response().Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}

	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":        "RATE_LIMIT_EXCEEDED",
			"message":     message,
			"retry_after": seconds,
		},
	})
}

// MemoryRateLimitStore keeps counters in process. Used in mock mode and tests.
type MemoryRateLimitStore struct {
	counters *cache.Cache
}

// NewMemoryRateLimitStore creates a new in-memory rate limit store.
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		counters: cache.New(cache.NoExpiration, time.Minute),
	}
}

// Increment increments the counter for the given key.
func (s *MemoryRateLimitStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	// Add fails when a live window already exists for key.
	if err := s.counters.Add(key, int64(0), window); err != nil {
		count, incErr := s.counters.IncrementInt64(key, 1)
		if incErr == nil {
			return count, nil
		}
		// window expired between Add and IncrementInt64
		s.counters.Set(key, int64(1), window)
		return 1, nil
	}
	return s.counters.IncrementInt64(key, 1)
}

// TTL returns the remaining window for key.
func (s *MemoryRateLimitStore) TTL(_ context.Context, key string) (time.Duration, error) {
	_, expiresAt, found := s.counters.GetWithExpiration(key)
	if !found || expiresAt.IsZero() {
		return 0, nil
	}
	return max(time.Until(expiresAt), 0), nil
}

// Reset clears all counters.
func (s *MemoryRateLimitStore) Reset() {
	s.counters.Flush()
}

// RedisRateLimitStore shares counters between API replicas through Redis.
type RedisRateLimitStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisRateLimitStore creates a new Redis-based rate limit store.
func NewRedisRateLimitStore(client redis.Cmdable, keyPrefix string) *RedisRateLimitStore {
	if keyPrefix == "" {
		keyPrefix = DefaultRateLimitPrefix
	}
	return &RedisRateLimitStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Increment runs INCR and sets the window expiry on the first hit.
func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := s.keyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	return incr.Val(), nil
}

// TTL returns the remaining TTL for the given key.
func (s *RedisRateLimitStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read ttl: %w", err)
	}
	// negative values mean no key or no expiry
	return max(ttl, 0), nil
}
