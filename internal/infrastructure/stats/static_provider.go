package stats

import (
	"context"
	"math/rand/v2"

	"github.com/lllypuk/waitlist/internal/domain/stats"
)

// StaticProvider always returns the same stats
type StaticProvider struct {
	value stats.Stats
}

// NewStaticProvider returns a provider of value
func NewStaticProvider(value stats.Stats) *StaticProvider {
	return &StaticProvider{value: value}
}

// NewZeroProvider returns a provider of zero stats
func NewZeroProvider() *StaticProvider {
	return NewStaticProvider(stats.Zero())
}

// Get returns the fixed value
func (p *StaticProvider) Get(context.Context, string) (stats.Stats, error) {
	return p.value, nil
}

// RandomProvider makes up plausible numbers for demo environments
type RandomProvider struct {
	maxFollowers int64
	maxCollabs   int64
}

// NewRandomProvider returns values in [0, maxFollowers) and [0, maxCollabs)
func NewRandomProvider(maxFollowers, maxCollabs int64) *RandomProvider {
	return &RandomProvider{
		maxFollowers: max(maxFollowers, 1),
		maxCollabs:   max(maxCollabs, 1),
	}
}

// Get returns random stats
func (p *RandomProvider) Get(context.Context, string) (stats.Stats, error) {
	return stats.Stats{
		Followers: rand.Int64N(p.maxFollowers), //nolint:gosec // demo data
		Collabs:   rand.Int64N(p.maxCollabs),   //nolint:gosec // demo data
	}, nil
}
