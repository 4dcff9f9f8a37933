// Package service provides business logic services that orchestrate use cases.
package service

import (
	"context"
	"errors"

	waitlistapp "github.com/lllypuk/waitlist/internal/application/waitlist"
)

// ErrUseCaseNotConfigured is returned when an operation's use case was not wired.
var ErrUseCaseNotConfigured = errors.New("use case not configured")

// WaitlistService exposes the waitlist use cases to the HTTP layer.
type WaitlistService struct {
	registerUC    *waitlistapp.RegisterUseCase
	getEntryUC    *waitlistapp.GetEntryUseCase
	getProfileUC  *waitlistapp.GetProfileUseCase
	getStatsUC    *waitlistapp.GetStatsUseCase
	listEntriesUC *waitlistapp.ListEntriesUseCase
}

// WaitlistServiceOption configures the WaitlistService.
type WaitlistServiceOption func(*WaitlistService)

// WithRegisterUseCase sets the registration use case.
func WithRegisterUseCase(uc *waitlistapp.RegisterUseCase) WaitlistServiceOption {
	return func(s *WaitlistService) {
		s.registerUC = uc
	}
}

// WithGetEntryUseCase sets the own-entry lookup use case.
func WithGetEntryUseCase(uc *waitlistapp.GetEntryUseCase) WaitlistServiceOption {
	return func(s *WaitlistService) {
		s.getEntryUC = uc
	}
}

// WithGetProfileUseCase sets the profile assembly use case.
func WithGetProfileUseCase(uc *waitlistapp.GetProfileUseCase) WaitlistServiceOption {
	return func(s *WaitlistService) {
		s.getProfileUC = uc
	}
}

// WithGetStatsUseCase sets the stats lookup use case.
func WithGetStatsUseCase(uc *waitlistapp.GetStatsUseCase) WaitlistServiceOption {
	return func(s *WaitlistService) {
		s.getStatsUC = uc
	}
}

// WithListEntriesUseCase sets the admin listing use case.
func WithListEntriesUseCase(uc *waitlistapp.ListEntriesUseCase) WaitlistServiceOption {
	return func(s *WaitlistService) {
		s.listEntriesUC = uc
	}
}

// NewWaitlistService creates a new WaitlistService.
func NewWaitlistService(opts ...WaitlistServiceOption) *WaitlistService {
	s := &WaitlistService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the caller's waitlist entry.
func (s *WaitlistService) Register(
	ctx context.Context,
	cmd waitlistapp.RegisterCommand,
) (waitlistapp.Result, error) {
	if s.registerUC == nil {
		return waitlistapp.Result{}, ErrUseCaseNotConfigured
	}
	return s.registerUC.Execute(ctx, cmd)
}

// GetEntry returns the caller's own entry.
func (s *WaitlistService) GetEntry(
	ctx context.Context,
	query waitlistapp.GetEntryQuery,
) (waitlistapp.Result, error) {
	if s.getEntryUC == nil {
		return waitlistapp.Result{}, ErrUseCaseNotConfigured
	}
	return s.getEntryUC.Execute(ctx, query)
}

// GetProfile assembles the caller's profile.
func (s *WaitlistService) GetProfile(
	ctx context.Context,
	query waitlistapp.GetProfileQuery,
) (waitlistapp.ProfileResult, error) {
	if s.getProfileUC == nil {
		return waitlistapp.ProfileResult{}, ErrUseCaseNotConfigured
	}
	return s.getProfileUC.Execute(ctx, query)
}

// GetStats returns engagement stats for a user id.
func (s *WaitlistService) GetStats(
	ctx context.Context,
	query waitlistapp.GetStatsQuery,
) (waitlistapp.StatsResult, error) {
	if s.getStatsUC == nil {
		return waitlistapp.StatsResult{}, ErrUseCaseNotConfigured
	}
	return s.getStatsUC.Execute(ctx, query)
}

// ListEntries lists every entry for administrators.
func (s *WaitlistService) ListEntries(
	ctx context.Context,
	query waitlistapp.ListEntriesQuery,
) (waitlistapp.EntriesListResult, error) {
	if s.listEntriesUC == nil {
		return waitlistapp.EntriesListResult{}, ErrUseCaseNotConfigured
	}
	return s.listEntriesUC.Execute(ctx, query)
}
