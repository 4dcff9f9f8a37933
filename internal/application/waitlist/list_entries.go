package waitlist

import (
	"context"
	"fmt"
)

// ListEntriesUseCase lists the whole waitlist for administrators
type ListEntriesUseCase struct {
	repo Repository
	opts options
}

// NewListEntriesUseCase creates a new ListEntriesUseCase
func NewListEntriesUseCase(repo Repository, opts ...Option) *ListEntriesUseCase {
	return &ListEntriesUseCase{repo: repo, opts: buildOptions(opts)}
}

// Execute returns entries newest first
func (uc *ListEntriesUseCase) Execute(ctx context.Context, query ListEntriesQuery) (EntriesListResult, error) {
	if query.Identity.IsZero() {
		return EntriesListResult{}, ErrUnauthenticated
	}
	if !query.Identity.IsAdmin {
		return EntriesListResult{}, ErrNotAdmin
	}

	entries, err := uc.repo.ListAll(ctx)
	if err != nil {
		uc.opts.logger.ErrorContext(ctx, "failed to list waitlist entries", "error", err)
		return EntriesListResult{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	// the total comes from the same read so it always matches the page
	return EntriesListResult{
		Entries:    entries,
		TotalCount: len(entries),
	}, nil
}
