package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lllypuk/waitlist/internal/domain/errs"
	"github.com/lllypuk/waitlist/internal/domain/stats"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
)

// GetProfileUseCase assembles identity, waitlist entry and stats into a
// profile. The entry is essential; stats are best effort. Nothing is cached.
type GetProfileUseCase struct {
	repo  Repository
	stats StatsProvider
	opts  options
}

// NewGetProfileUseCase creates a new GetProfileUseCase
func NewGetProfileUseCase(repo Repository, provider StatsProvider, opts ...Option) *GetProfileUseCase {
	return &GetProfileUseCase{repo: repo, stats: provider, opts: buildOptions(opts)}
}

// Execute assembles the caller's profile
func (uc *GetProfileUseCase) Execute(ctx context.Context, query GetProfileQuery) (ProfileResult, error) {
	if query.Identity.IsZero() {
		return ProfileResult{}, ErrUnauthenticated
	}

	started := time.Now()
	userID := query.Identity.UserID

	var (
		entryRes sourceResult[*waitlist.Entry]
		statsRes sourceResult[stats.Stats]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entry, err := uc.repo.FindByUserID(gctx, userID)
		entryRes = sourceResult[*waitlist.Entry]{source: sourceEntry, value: entry, err: err}
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			// cancels the stats call, the profile cannot be built anyway
			return err
		}
		return nil
	})
	g.Go(func() error {
		statsRes = lookupStats(gctx, uc.stats, uc.opts, userID)
		return nil
	})

	if err := g.Wait(); err != nil {
		uc.opts.logger.ErrorContext(ctx, "failed to load waitlist entry for profile",
			"user_id", userID,
			"source", string(entryRes.source),
			"error", err,
		)
		return ProfileResult{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	if entryRes.failed() {
		uc.opts.metrics.ProfileAssembled(ProfileAbsent, time.Since(started))
		return ProfileResult{
			Status:   ProfileAbsent,
			Identity: query.Identity,
		}, nil
	}

	uc.opts.metrics.ProfileAssembled(ProfileComplete, time.Since(started))
	return ProfileResult{
		Status:   ProfileComplete,
		Identity: query.Identity,
		Profile: &ProfileView{
			Identity: query.Identity,
			Entry:    entryRes.value,
			Stats:    statsRes.value,
		},
		StatsDegraded: statsRes.failed(),
	}, nil
}
