package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/waitlist/internal/config"
	"github.com/lllypuk/waitlist/internal/domain/stats"
	statsprovider "github.com/lllypuk/waitlist/internal/infrastructure/stats"
)

const redisTimeout = 5 * time.Second

var errNegativeStats = errors.New("stats must be non-negative")

// runSeedStats writes the stats hash the Redis provider reads for one user.
func runSeedStats(ctx context.Context, cfg *config.Config, args []string, logger *slog.Logger) error {
	opts, err := parseSeedStats(args)
	if err != nil {
		return err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Error("failed to close redis client", slog.String("error", closeErr.Error()))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	provider := statsprovider.NewRedisProvider(client, cfg.Stats.RedisKeyPrefix)
	if setErr := provider.Set(ctx, opts.userID, opts.stats); setErr != nil {
		return setErr
	}

	logger.InfoContext(ctx, "stats seeded",
		slog.String("user_id", opts.userID),
		slog.Int64("followers", opts.stats.Followers),
		slog.Int64("collabs", opts.stats.Collabs),
	)
	return nil
}

type seedStatsOptions struct {
	userID string
	stats  stats.Stats
}

func parseSeedStats(args []string) (seedStatsOptions, error) {
	fs := flag.NewFlagSet("seed-stats", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	userID := fs.String("user", "", "user id")
	followers := fs.Int64("followers", 0, "follower count")
	collabs := fs.Int64("collabs", 0, "collaboration count")

	if err := fs.Parse(args); err != nil {
		return seedStatsOptions{}, err
	}
	if strings.TrimSpace(*userID) == "" {
		return seedStatsOptions{}, errUserRequired
	}

	s := stats.Stats{Followers: *followers, Collabs: *collabs}
	if !s.IsValid() {
		return seedStatsOptions{}, fmt.Errorf("%w: followers=%d collabs=%d", errNegativeStats, s.Followers, s.Collabs)
	}

	return seedStatsOptions{userID: *userID, stats: s}, nil
}
