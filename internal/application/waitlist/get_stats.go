package waitlist

import (
	"context"
	"fmt"

	"github.com/lllypuk/waitlist/internal/application/appcore"
)

// GetStatsUseCase returns stats for a user id. Provider failures never reach
// the caller: they are reported as zero stats with Degraded set.
type GetStatsUseCase struct {
	stats StatsProvider
	opts  options
}

// NewGetStatsUseCase creates a new GetStatsUseCase
func NewGetStatsUseCase(provider StatsProvider, opts ...Option) *GetStatsUseCase {
	return &GetStatsUseCase{stats: provider, opts: buildOptions(opts)}
}

// Execute performs the lookup
func (uc *GetStatsUseCase) Execute(ctx context.Context, query GetStatsQuery) (StatsResult, error) {
	if query.Identity.IsZero() {
		return StatsResult{}, ErrUnauthenticated
	}
	if err := appcore.CollectValidation(appcore.ValidateRequired("id", query.UserID)); err != nil {
		return StatsResult{}, fmt.Errorf("invalid stats query: %w", err)
	}

	res := lookupStats(ctx, uc.stats, uc.opts, query.UserID)
	return StatsResult{
		UserID:   query.UserID,
		Stats:    res.value,
		Degraded: res.failed(),
	}, nil
}
