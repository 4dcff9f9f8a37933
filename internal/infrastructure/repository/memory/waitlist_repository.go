// Package memory provides an in-process waitlist store used in mock mode and
// in tests. Both unique keys are checked and written under one lock, so it
// gives the same guarantees as the MongoDB unique indexes.
package memory

import (
	"context"
	"slices"
	"sync"

	appwaitlist "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/domain/errs"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
)

// WaitlistRepository is a map-backed implementation of waitlist.Repository
type WaitlistRepository struct {
	mu       sync.RWMutex
	byEmail  map[string]*waitlist.Entry
	byUserID map[string]*waitlist.Entry
	ordered  []*waitlist.Entry
}

// NewWaitlistRepository creates an empty repository
func NewWaitlistRepository() *WaitlistRepository {
	return &WaitlistRepository{
		byEmail:  make(map[string]*waitlist.Entry),
		byUserID: make(map[string]*waitlist.Entry),
	}
}

// FindByEmail finds an entry by exact email
func (r *WaitlistRepository) FindByEmail(ctx context.Context, email string) (*waitlist.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.byEmail[email]; ok {
		return e, nil
	}
	return nil, errs.ErrNotFound
}

// FindByUserID finds an entry by exact user id
func (r *WaitlistRepository) FindByUserID(ctx context.Context, userID string) (*waitlist.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.byUserID[userID]; ok {
		return e, nil
	}
	return nil, errs.ErrNotFound
}

// Create stores entry if neither its email nor its user id is taken
func (r *WaitlistRepository) Create(ctx context.Context, entry *waitlist.Entry) (*waitlist.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errs.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[entry.Email()]; ok {
		return nil, errs.NewUniqueViolation(appwaitlist.FieldEmail)
	}
	if _, ok := r.byUserID[entry.UserID()]; ok {
		return nil, errs.NewUniqueViolation(appwaitlist.FieldUserID)
	}

	r.byEmail[entry.Email()] = entry
	r.byUserID[entry.UserID()] = entry
	r.ordered = append(r.ordered, entry)
	return entry, nil
}

// ListAll returns entries newest first
func (r *WaitlistRepository) ListAll(ctx context.Context) ([]*waitlist.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := slices.Clone(r.ordered)
	r.mu.RUnlock()

	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b *waitlist.Entry) int {
		return b.CreatedAt().Compare(a.CreatedAt())
	})
	return out, nil
}

// Count returns the number of stored entries
func (r *WaitlistRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered), nil
}
