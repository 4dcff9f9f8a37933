package stats

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/lllypuk/waitlist/internal/domain/stats"
)

// Provider is the contract shared by every implementation in this package
type Provider interface {
	Get(ctx context.Context, userID string) (stats.Stats, error)
}

// CachedProvider keeps successful lookups of the wrapped provider for a TTL.
// Failures are not cached, the next call goes to the upstream again.
type CachedProvider struct {
	next  Provider
	cache *cache.Cache
}

// NewCachedProvider wraps next with a cache of the given TTL
func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Get returns cached stats when present
func (p *CachedProvider) Get(ctx context.Context, userID string) (stats.Stats, error) {
	if cached, found := p.cache.Get(userID); found {
		return cached.(stats.Stats), nil
	}

	s, err := p.next.Get(ctx, userID)
	if err != nil {
		return stats.Stats{}, err
	}

	p.cache.Set(userID, s, cache.DefaultExpiration)
	return s, nil
}
