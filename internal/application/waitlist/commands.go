package waitlist

import (
	"github.com/lllypuk/waitlist/internal/application/appcore"
	"github.com/lllypuk/waitlist/internal/domain/identity"
)

// Submission is the applicant-supplied part of a registration.
// Nil optional fields mean "not provided"; an empty string means "provided empty".
type Submission struct {
	Name            string
	Email           string
	UserType        string
	CompanyOrHandle *string
	Message         *string
}

// RegisterCommand - a waitlist application by the authenticated caller
type RegisterCommand struct {
	Identity   identity.Identity
	Submission Submission
}

func (c RegisterCommand) CommandName() string { return "RegisterWaitlistEntry" }

var (
	_ appcore.Command = RegisterCommand{}
	_ appcore.Query   = GetProfileQuery{}
	_ appcore.Query   = GetEntryQuery{}
	_ appcore.Query   = GetStatsQuery{}
	_ appcore.Query   = ListEntriesQuery{}

	_ appcore.UseCase[RegisterCommand, Result]             = (*RegisterUseCase)(nil)
	_ appcore.UseCase[GetEntryQuery, Result]               = (*GetEntryUseCase)(nil)
	_ appcore.UseCase[GetProfileQuery, ProfileResult]      = (*GetProfileUseCase)(nil)
	_ appcore.UseCase[GetStatsQuery, StatsResult]          = (*GetStatsUseCase)(nil)
	_ appcore.UseCase[ListEntriesQuery, EntriesListResult] = (*ListEntriesUseCase)(nil)
)
