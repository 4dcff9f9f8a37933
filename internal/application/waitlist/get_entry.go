package waitlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/waitlist/internal/application/appcore"
	"github.com/lllypuk/waitlist/internal/domain/errs"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
)

// GetEntryUseCase returns the caller's own waitlist entry
type GetEntryUseCase struct {
	repo Repository
	opts options
}

// NewGetEntryUseCase creates a new GetEntryUseCase
func NewGetEntryUseCase(repo Repository, opts ...Option) *GetEntryUseCase {
	return &GetEntryUseCase{repo: repo, opts: buildOptions(opts)}
}

// Execute looks up the entry bound to the caller
func (uc *GetEntryUseCase) Execute(ctx context.Context, query GetEntryQuery) (Result, error) {
	if query.Identity.IsZero() {
		return Result{}, ErrUnauthenticated
	}

	entry, err := uc.repo.FindByUserID(ctx, query.Identity.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		return Result{}, ErrEntryNotFound
	}
	if err != nil {
		uc.opts.logger.ErrorContext(ctx, "failed to look up waitlist entry",
			"user_id", query.Identity.UserID,
			"error", err,
		)
		return Result{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	return Result{
		Result: appcore.Result[*waitlist.Entry]{
			Value: entry,
		},
	}, nil
}
