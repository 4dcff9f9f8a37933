package waitlist

import (
	"github.com/lllypuk/waitlist/internal/application/appcore"
	"github.com/lllypuk/waitlist/internal/domain/identity"
	"github.com/lllypuk/waitlist/internal/domain/stats"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
)

// Result - result of an operation on a single entry
type Result struct {
	appcore.Result[*waitlist.Entry]
}

// EntriesListResult - result of the admin listing
type EntriesListResult struct {
	Entries    []*waitlist.Entry
	TotalCount int
}

// ProfileStatus tells whether a profile could be assembled
type ProfileStatus string

const (
	ProfileComplete ProfileStatus = "complete"
	ProfileAbsent   ProfileStatus = "absent"
)

// ProfileView is assembled per request and never stored
type ProfileView struct {
	Identity identity.Identity
	Entry    *waitlist.Entry
	Stats    stats.Stats
}

// ProfileResult is either a complete profile or the absent marker.
// Absence is a normal outcome, not an error.
type ProfileResult struct {
	Status   ProfileStatus
	Identity identity.Identity
	// Profile is nil when Status is ProfileAbsent
	Profile *ProfileView
	// StatsDegraded is set when Stats holds the zero fallback
	StatsDegraded bool
}

// IsAbsent reports whether the caller has no waitlist entry
func (r ProfileResult) IsAbsent() bool {
	return r.Status == ProfileAbsent
}

// StatsResult - result of a stats lookup
type StatsResult struct {
	UserID   string
	Stats    stats.Stats
	Degraded bool
}
