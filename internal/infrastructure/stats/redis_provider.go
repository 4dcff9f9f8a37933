// Package stats contains StatsProvider implementations: a Redis-backed
// provider, a TTL cache decorator and fixed providers for development.
package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/waitlist/internal/domain/stats"
)

// DefaultKeyPrefix is prepended to the user id to form the hash key
const DefaultKeyPrefix = "waitlist:stats:"

// Hash fields
const (
	fieldFollowers = "followers"
	fieldCollabs   = "collabs"
)

// RedisClient is the subset of redis.Cmdable used by RedisProvider
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// RedisProvider reads stats from one Redis hash per user:
//
//	HSET waitlist:stats:<user_id> followers 120 collabs 4
//
// A missing hash means the user has no activity yet and yields zero stats.
type RedisProvider struct {
	client RedisClient
	prefix string
}

// NewRedisProvider creates a provider over client. An empty prefix falls
// back to DefaultKeyPrefix.
func NewRedisProvider(client RedisClient, prefix string) *RedisProvider {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisProvider{client: client, prefix: prefix}
}

// Get returns the stats stored for userID
func (p *RedisProvider) Get(ctx context.Context, userID string) (stats.Stats, error) {
	values, err := p.client.HGetAll(ctx, p.key(userID)).Result()
	if err != nil {
		return stats.Stats{}, fmt.Errorf("failed to read stats for %s: %w", userID, err)
	}

	followers, err := parseCounter(values, fieldFollowers)
	if err != nil {
		return stats.Stats{}, err
	}
	collabs, err := parseCounter(values, fieldCollabs)
	if err != nil {
		return stats.Stats{}, err
	}

	return stats.Stats{Followers: followers, Collabs: collabs}, nil
}

// Set stores stats for userID. It is used by seeding tools and tests.
func (p *RedisProvider) Set(ctx context.Context, userID string, s stats.Stats) error {
	err := p.client.HSet(ctx, p.key(userID),
		fieldFollowers, s.Followers,
		fieldCollabs, s.Collabs,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to write stats for %s: %w", userID, err)
	}
	return nil
}

func (p *RedisProvider) key(userID string) string {
	return p.prefix + userID
}

func parseCounter(values map[string]string, field string) (int64, error) {
	raw, ok := values[field]
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s counter %q: %w", field, raw, err)
	}
	return n, nil
}
