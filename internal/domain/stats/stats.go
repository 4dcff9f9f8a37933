package stats

// Stats are the engagement numbers shown on a profile
type Stats struct {
	Followers int64 `json:"followers"`
	Collabs   int64 `json:"collabs"`
}

// Zero is the value used whenever stats are unavailable
func Zero() Stats {
	return Stats{}
}

// IsValid reports whether both counters are non-negative
func (s Stats) IsValid() bool {
	return s.Followers >= 0 && s.Collabs >= 0
}
