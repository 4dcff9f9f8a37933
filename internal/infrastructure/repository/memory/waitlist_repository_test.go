package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appwaitlist "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/domain/errs"
	"github.com/lllypuk/waitlist/internal/domain/uuid"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
	"github.com/lllypuk/waitlist/internal/infrastructure/repository/memory"
)

func newEntry(t *testing.T, userID, email string) *waitlist.Entry {
	t.Helper()
	e, err := waitlist.NewEntry(userID, waitlist.Details{
		Email:    email,
		Name:     "Ann",
		UserType: waitlist.UserTypeCreator,
	})
	require.NoError(t, err)
	return e
}

func TestWaitlistRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWaitlistRepository()
	entry := newEntry(t, "u1", "a@x.io")

	created, err := repo.Create(ctx, entry)
	require.NoError(t, err)
	assert.Equal(t, entry.ID(), created.ID())

	byEmail, err := repo.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, entry.ID(), byEmail.ID())

	byUser, err := repo.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, entry.ID(), byUser.ID())
}

func TestWaitlistRepository_ExactMatchOnly(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWaitlistRepository()
	_, err := repo.Create(ctx, newEntry(t, "u1", "a@x.io"))
	require.NoError(t, err)

	_, err = repo.FindByEmail(ctx, "A@X.IO")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.FindByUserID(ctx, "U1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestWaitlistRepository_UniqueViolations(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWaitlistRepository()
	_, err := repo.Create(ctx, newEntry(t, "u1", "a@x.io"))
	require.NoError(t, err)

	t.Run("same email", func(t *testing.T) {
		_, err := repo.Create(ctx, newEntry(t, "u2", "a@x.io"))

		var uv *errs.UniqueViolationError
		require.ErrorAs(t, err, &uv)
		assert.Equal(t, appwaitlist.FieldEmail, uv.Field)
	})

	t.Run("same user", func(t *testing.T) {
		_, err := repo.Create(ctx, newEntry(t, "u1", "other@x.io"))

		var uv *errs.UniqueViolationError
		require.ErrorAs(t, err, &uv)
		assert.Equal(t, appwaitlist.FieldUserID, uv.Field)
	})

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWaitlistRepository_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWaitlistRepository()

	const workers = 16
	entries := make([]*waitlist.Entry, workers)
	for i := range entries {
		entries[i] = newEntry(t, fmt.Sprintf("u%d", i), "same@x.io")
	}

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for _, e := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, e)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, dup int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, errs.ErrAlreadyExists)
		dup++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestWaitlistRepository_ListAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWaitlistRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, uid := range []string{"old", "mid", "new"} {
		e := waitlist.Reconstruct(uuid.NewUUID(), uid, uid+"@x.io", uid, waitlist.UserTypeBrand,
			nil, nil, base.Add(time.Duration(i)*time.Hour))
		_, err := repo.Create(ctx, e)
		require.NoError(t, err)
	}

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "new", entries[0].UserID())
	assert.Equal(t, "mid", entries[1].UserID())
	assert.Equal(t, "old", entries[2].UserID())
}

func TestWaitlistRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := memory.NewWaitlistRepository()

	_, err := repo.FindByEmail(ctx, "a@x.io")
	assert.ErrorIs(t, err, context.Canceled)
}
