package waitlist

import (
	"context"

	"github.com/lllypuk/waitlist/internal/domain/stats"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
)

//go:generate mockgen -source=repository.go -destination=mocks/mocks.go -package=mocks Repository,StatsProvider

// Unique field names reported by errs.UniqueViolationError
const (
	FieldEmail  = "email"
	FieldUserID = "user_id"
)

// Repository is the persistence contract for waitlist entries.
// Lookups are exact matches and return errs.ErrNotFound when nothing matches.
// Create reports a unique-index violation as *errs.UniqueViolationError
// naming FieldEmail or FieldUserID.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*waitlist.Entry, error)
	FindByUserID(ctx context.Context, userID string) (*waitlist.Entry, error)
	Create(ctx context.Context, entry *waitlist.Entry) (*waitlist.Entry, error)

	// ListAll returns every entry ordered by creation time, newest first
	ListAll(ctx context.Context) ([]*waitlist.Entry, error)
	Count(ctx context.Context) (int, error)
}

// StatsProvider supplies engagement stats. Implementations may be slow or
// fail; callers bound every call with a timeout.
type StatsProvider interface {
	Get(ctx context.Context, userID string) (stats.Stats, error)
}
