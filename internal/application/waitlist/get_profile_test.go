package waitlist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	appwaitlist "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/application/waitlist/mocks"
	"github.com/lllypuk/waitlist/internal/domain/errs"
	"github.com/lllypuk/waitlist/internal/domain/identity"
	"github.com/lllypuk/waitlist/internal/domain/stats"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
	"github.com/lllypuk/waitlist/internal/infrastructure/repository/memory"
)

func registerEntry(t *testing.T, repo appwaitlist.Repository, userID, email string) {
	t.Helper()
	_, err := appwaitlist.NewRegisterUseCase(repo).Execute(context.Background(), appwaitlist.RegisterCommand{
		Identity:   caller(userID),
		Submission: validSubmission(email),
	})
	require.NoError(t, err)
}

func TestGetProfileUseCase_Execute_Complete(t *testing.T) {
	// Arrange
	repo := memory.NewWaitlistRepository()
	registerEntry(t, repo, "u1", "a@x.io")
	metrics := &recordingMetrics{}
	useCase := appwaitlist.NewGetProfileUseCase(repo,
		stubStats{value: stats.Stats{Followers: 10, Collabs: 2}},
		appwaitlist.WithMetrics(metrics),
	)

	// Act
	result, err := useCase.Execute(context.Background(), appwaitlist.GetProfileQuery{Identity: caller("u1")})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, appwaitlist.ProfileComplete, result.Status)
	assert.False(t, result.IsAbsent())
	require.NotNil(t, result.Profile)
	assert.Equal(t, "u1", result.Profile.Entry.UserID())
	assert.Equal(t, "u1", result.Profile.Identity.UserID)
	assert.Equal(t, stats.Stats{Followers: 10, Collabs: 2}, result.Profile.Stats)
	assert.False(t, result.StatsDegraded)
	assert.Equal(t, []appwaitlist.ProfileStatus{appwaitlist.ProfileComplete}, metrics.profiles)
	assert.Empty(t, metrics.fallbacks)
}

func TestGetProfileUseCase_Execute_Absent(t *testing.T) {
	// Arrange
	repo := memory.NewWaitlistRepository()
	useCase := appwaitlist.NewGetProfileUseCase(repo, stubStats{})

	// Act
	result, err := useCase.Execute(context.Background(), appwaitlist.GetProfileQuery{Identity: caller("u9")})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsAbsent())
	assert.Nil(t, result.Profile)
	assert.Equal(t, "u9", result.Identity.UserID)
}

func TestGetProfileUseCase_Execute_StatsFailureDegradesToZero(t *testing.T) {
	testCases := []struct {
		name     string
		provider appwaitlist.StatsProvider
		reason   string
	}{
		{"provider error", stubStats{err: errors.New("stats backend down")}, "error"},
		{"negative values", stubStats{value: stats.Stats{Followers: -5}}, "invalid"},
		{"slow provider", stubStats{value: stats.Stats{Followers: 3}, delay: time.Second}, "timeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			repo := memory.NewWaitlistRepository()
			registerEntry(t, repo, "u1", "a@x.io")
			metrics := &recordingMetrics{}
			useCase := appwaitlist.NewGetProfileUseCase(repo, tc.provider,
				appwaitlist.WithStatsTimeout(50*time.Millisecond),
				appwaitlist.WithMetrics(metrics),
			)

			// Act
			result, err := useCase.Execute(context.Background(), appwaitlist.GetProfileQuery{Identity: caller("u1")})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, appwaitlist.ProfileComplete, result.Status)
			assert.Equal(t, stats.Zero(), result.Profile.Stats)
			assert.True(t, result.StatsDegraded)
			assert.Equal(t, []string{tc.reason}, metrics.fallbacks)
		})
	}
}

func TestGetProfileUseCase_Execute_ProviderIgnoringContext(t *testing.T) {
	repo := memory.NewWaitlistRepository()
	registerEntry(t, repo, "u1", "a@x.io")
	release := make(chan struct{})
	defer close(release)
	useCase := appwaitlist.NewGetProfileUseCase(repo, stuckStats{release: release},
		appwaitlist.WithStatsTimeout(30*time.Millisecond))

	started := time.Now()
	result, err := useCase.Execute(context.Background(), appwaitlist.GetProfileQuery{Identity: caller("u1")})

	require.NoError(t, err)
	assert.Less(t, time.Since(started), time.Second)
	assert.True(t, result.StatsDegraded)
	assert.Equal(t, stats.Zero(), result.Profile.Stats)
}

func TestGetProfileUseCase_Execute_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	useCase := appwaitlist.NewGetProfileUseCase(mocks.NewMockRepository(ctrl), mocks.NewMockStatsProvider(ctrl))

	_, err := useCase.Execute(context.Background(), appwaitlist.GetProfileQuery{Identity: identity.Identity{}})

	assert.ErrorIs(t, err, appwaitlist.ErrUnauthenticated)
}

func TestGetProfileUseCase_Execute_StoreFailure(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().FindByUserID(gomock.Any(), "u1").Return(nil, errors.New("mongo timeout"))
	useCase := appwaitlist.NewGetProfileUseCase(repo, stubStats{value: stats.Stats{Followers: 1}})

	// Act
	_, err := useCase.Execute(context.Background(), appwaitlist.GetProfileQuery{Identity: caller("u1")})

	// Assert
	require.ErrorIs(t, err, appwaitlist.ErrStoreFailure)
	assert.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestGetProfileUseCase_Execute_StoreFailureIsNotAStatsFallback(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().FindByUserID(gomock.Any(), "u1").Return(nil, errors.New("mongo timeout"))
	metrics := &recordingMetrics{}
	useCase := appwaitlist.NewGetProfileUseCase(repo,
		stubStats{value: stats.Stats{Followers: 1}, delay: time.Second},
		appwaitlist.WithMetrics(metrics),
		appwaitlist.WithStatsTimeout(5*time.Second),
	)

	// Act
	_, err := useCase.Execute(context.Background(), appwaitlist.GetProfileQuery{Identity: caller("u1")})

	// Assert
	require.ErrorIs(t, err, appwaitlist.ErrStoreFailure)
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Empty(t, metrics.fallbacks)
	assert.Empty(t, metrics.profiles)
}

func TestGetProfileUseCase_Execute_RepeatedReadsReturnSameEntry(t *testing.T) {
	// Arrange
	repo := memory.NewWaitlistRepository()
	_, err := appwaitlist.NewRegisterUseCase(repo).Execute(context.Background(), appwaitlist.RegisterCommand{
		Identity: caller("u1"),
		Submission: appwaitlist.Submission{
			Name:            "Ann",
			Email:           "a@x.io",
			UserType:        "brand",
			CompanyOrHandle: ptr("Acme"),
			Message:         ptr(""),
		},
	})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockStatsProvider(ctrl)
	gomock.InOrder(
		provider.EXPECT().Get(gomock.Any(), "u1").Return(stats.Stats{Followers: 10, Collabs: 1}, nil),
		provider.EXPECT().Get(gomock.Any(), "u1").Return(stats.Stats{Followers: 99, Collabs: 7}, nil),
	)
	useCase := appwaitlist.NewGetProfileUseCase(repo, provider)
	query := appwaitlist.GetProfileQuery{Identity: caller("u1")}

	// Act
	first, err1 := useCase.Execute(context.Background(), query)
	second, err2 := useCase.Execute(context.Background(), query)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.NotNil(t, first.Profile)
	require.NotNil(t, second.Profile)

	a, b := first.Profile.Entry, second.Profile.Entry
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, a.UserID(), b.UserID())
	assert.Equal(t, a.Email(), b.Email())
	assert.Equal(t, a.Name(), b.Name())
	assert.Equal(t, a.UserType(), b.UserType())
	assert.Equal(t, a.CompanyOrHandle(), b.CompanyOrHandle())
	assert.Equal(t, a.Message(), b.Message())
	assert.True(t, a.CreatedAt().Equal(b.CreatedAt()))

	// stats are live on every read
	assert.Equal(t, stats.Stats{Followers: 10, Collabs: 1}, first.Profile.Stats)
	assert.Equal(t, stats.Stats{Followers: 99, Collabs: 7}, second.Profile.Stats)
}

func TestGetProfileUseCase_Execute_NoCaching(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	provider := mocks.NewMockStatsProvider(ctrl)
	repo.EXPECT().FindByUserID(gomock.Any(), "u1").Return(nil, errs.ErrNotFound).Times(2)
	provider.EXPECT().Get(gomock.Any(), "u1").Return(stats.Zero(), nil).Times(2)
	useCase := appwaitlist.NewGetProfileUseCase(repo, provider)
	query := appwaitlist.GetProfileQuery{Identity: caller("u1")}

	// Act
	first, err1 := useCase.Execute(context.Background(), query)
	second, err2 := useCase.Execute(context.Background(), query)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, first.IsAbsent())
	assert.True(t, second.IsAbsent())
}

func TestGetEntryUseCase_Execute(t *testing.T) {
	repo := memory.NewWaitlistRepository()
	registerEntry(t, repo, "u1", "a@x.io")
	useCase := appwaitlist.NewGetEntryUseCase(repo)

	t.Run("found", func(t *testing.T) {
		result, err := useCase.Execute(context.Background(), appwaitlist.GetEntryQuery{Identity: caller("u1")})

		require.NoError(t, err)
		assert.Equal(t, "a@x.io", result.Value.Email())
	})

	t.Run("not on waitlist", func(t *testing.T) {
		_, err := useCase.Execute(context.Background(), appwaitlist.GetEntryQuery{Identity: caller("u2")})

		assert.ErrorIs(t, err, appwaitlist.ErrEntryNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := useCase.Execute(context.Background(), appwaitlist.GetEntryQuery{})

		assert.ErrorIs(t, err, appwaitlist.ErrUnauthenticated)
	})
}

func TestGetStatsUseCase_Execute(t *testing.T) {
	t.Run("returns provider stats for any user id", func(t *testing.T) {
		useCase := appwaitlist.NewGetStatsUseCase(stubStats{value: stats.Stats{Followers: 7, Collabs: 1}})

		result, err := useCase.Execute(context.Background(), appwaitlist.GetStatsQuery{
			Identity: caller("u1"),
			UserID:   "someone-else",
		})

		require.NoError(t, err)
		assert.Equal(t, "someone-else", result.UserID)
		assert.Equal(t, stats.Stats{Followers: 7, Collabs: 1}, result.Stats)
		assert.False(t, result.Degraded)
	})

	t.Run("provider failure yields zeros", func(t *testing.T) {
		useCase := appwaitlist.NewGetStatsUseCase(stubStats{err: errors.New("down")})

		result, err := useCase.Execute(context.Background(), appwaitlist.GetStatsQuery{
			Identity: caller("u1"),
			UserID:   "u1",
		})

		require.NoError(t, err)
		assert.Equal(t, stats.Zero(), result.Stats)
		assert.True(t, result.Degraded)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		useCase := appwaitlist.NewGetStatsUseCase(mocks.NewMockStatsProvider(ctrl))

		_, err := useCase.Execute(context.Background(), appwaitlist.GetStatsQuery{UserID: "u1"})

		assert.ErrorIs(t, err, appwaitlist.ErrUnauthenticated)
	})
}

func TestListEntriesUseCase_Execute(t *testing.T) {
	repo := memory.NewWaitlistRepository()
	registerEntry(t, repo, "u1", "a@x.io")
	registerEntry(t, repo, "u2", "b@x.io")
	useCase := appwaitlist.NewListEntriesUseCase(repo)

	t.Run("admin sees every entry", func(t *testing.T) {
		admin := caller("admin")
		admin.IsAdmin = true

		result, err := useCase.Execute(context.Background(), appwaitlist.ListEntriesQuery{Identity: admin})

		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCount)
		assert.Len(t, result.Entries, 2)
	})

	t.Run("regular user is rejected", func(t *testing.T) {
		_, err := useCase.Execute(context.Background(), appwaitlist.ListEntriesQuery{Identity: caller("u1")})

		assert.ErrorIs(t, err, appwaitlist.ErrNotAdmin)
	})
}

func TestListEntriesUseCase_Execute_TotalMatchesListing(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().ListAll(gomock.Any()).Return([]*waitlist.Entry{{}, {}, {}}, nil)
	admin := caller("admin")
	admin.IsAdmin = true

	// Act
	result, err := appwaitlist.NewListEntriesUseCase(repo).Execute(
		context.Background(), appwaitlist.ListEntriesQuery{Identity: admin})

	// Assert
	require.NoError(t, err)
	assert.Len(t, result.Entries, 3)
	assert.Equal(t, len(result.Entries), result.TotalCount)
}

func TestListEntriesUseCase_Execute_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().ListAll(gomock.Any()).Return(nil, errors.New("connection reset"))
	admin := caller("admin")
	admin.IsAdmin = true

	_, err := appwaitlist.NewListEntriesUseCase(repo).Execute(
		context.Background(), appwaitlist.ListEntriesQuery{Identity: admin})

	assert.ErrorIs(t, err, appwaitlist.ErrStoreFailure)
}
