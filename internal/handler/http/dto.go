package httphandler

import (
	"time"

	waitlistapp "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/domain/identity"
	"github.com/lllypuk/waitlist/internal/domain/stats"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
)

// RegisterRequest is the body of POST /api/waitlist. Unknown fields are rejected.
type RegisterRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	UserType        string  `json:"userType"`
	CompanyOrHandle *string `json:"companyOrHandle"`
	Message         *string `json:"message"`
}

func (r RegisterRequest) submission() waitlistapp.Submission {
	return waitlistapp.Submission{
		Name:            r.Name,
		Email:           r.Email,
		UserType:        r.UserType,
		CompanyOrHandle: r.CompanyOrHandle,
		Message:         r.Message,
	}
}

// EntryResponse represents a waitlist entry in API responses.
// Optional fields are omitted when absent and kept when empty.
type EntryResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"userId"`
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	UserType        string  `json:"userType"`
	CompanyOrHandle *string `json:"companyOrHandle,omitempty"`
	Message         *string `json:"message,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// EntryListResponse is the admin listing.
type EntryListResponse struct {
	Entries    []EntryResponse `json:"entries"`
	TotalCount int             `json:"totalCount"`
}

// IdentityResponse is the caller as asserted by the identity provider.
type IdentityResponse struct {
	UserID      string   `json:"userId"`
	Username    string   `json:"username,omitempty"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	IsAdmin     bool     `json:"isAdmin"`
}

// StatsResponse holds engagement numbers.
type StatsResponse struct {
	Followers int64 `json:"followers"`
	Collabs   int64 `json:"collabs"`
}

// ProfileResponse is either complete or absent. Entry and Stats are only
// present when Status is "complete".
type ProfileResponse struct {
	Status        string           `json:"status"`
	Identity      IdentityResponse `json:"identity"`
	Entry         *EntryResponse   `json:"entry,omitempty"`
	Stats         *StatsResponse   `json:"stats,omitempty"`
	StatsDegraded bool             `json:"statsDegraded,omitempty"`
}

// ToEntryResponse converts a domain entry.
func ToEntryResponse(e *waitlist.Entry) EntryResponse {
	return EntryResponse{
		ID:              e.ID().String(),
		UserID:          e.UserID(),
		Email:           e.Email(),
		Name:            e.Name(),
		UserType:        string(e.UserType()),
		CompanyOrHandle: e.CompanyOrHandle(),
		Message:         e.Message(),
		CreatedAt:       e.CreatedAt().UTC().Format(time.RFC3339),
	}
}

func toIdentityResponse(id identity.Identity) IdentityResponse {
	return IdentityResponse{
		UserID:      id.UserID,
		Username:    id.Username,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		Roles:       id.Roles,
		IsAdmin:     id.IsAdmin,
	}
}

func toStatsResponse(s stats.Stats) StatsResponse {
	return StatsResponse{Followers: s.Followers, Collabs: s.Collabs}
}

func toProfileResponse(r waitlistapp.ProfileResult) ProfileResponse {
	resp := ProfileResponse{
		Status:   string(r.Status),
		Identity: toIdentityResponse(r.Identity),
	}
	if r.IsAbsent() || r.Profile == nil {
		return resp
	}

	if r.Profile.Entry != nil {
		entry := ToEntryResponse(r.Profile.Entry)
		resp.Entry = &entry
	}
	st := toStatsResponse(r.Profile.Stats)
	resp.Stats = &st
	resp.StatsDegraded = r.StatsDegraded
	return resp
}
