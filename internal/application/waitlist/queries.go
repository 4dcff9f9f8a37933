package waitlist

import "github.com/lllypuk/waitlist/internal/domain/identity"

// GetProfileQuery - profile of the authenticated caller
type GetProfileQuery struct {
	Identity identity.Identity
}

func (q GetProfileQuery) QueryName() string { return "GetProfile" }

// GetEntryQuery - the caller's own waitlist entry
type GetEntryQuery struct {
	Identity identity.Identity
}

func (q GetEntryQuery) QueryName() string { return "GetWaitlistEntry" }

// GetStatsQuery - engagement stats for any user id
type GetStatsQuery struct {
	Identity identity.Identity
	UserID   string
}

func (q GetStatsQuery) QueryName() string { return "GetStats" }

// ListEntriesQuery - every entry, newest first (admin only)
type ListEntriesQuery struct {
	Identity identity.Identity
}

func (q ListEntriesQuery) QueryName() string { return "ListWaitlistEntries" }
