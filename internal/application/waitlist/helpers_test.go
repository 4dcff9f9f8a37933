package waitlist_test

import (
	"context"
	"sync"
	"time"

	appwaitlist "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/domain/identity"
	"github.com/lllypuk/waitlist/internal/domain/stats"
)

func ptr(s string) *string { return &s }

func caller(userID string) identity.Identity {
	return identity.Identity{UserID: userID, Email: userID + "@idp.test"}
}

func validSubmission(email string) appwaitlist.Submission {
	return appwaitlist.Submission{
		Name:     "Ann",
		Email:    email,
		UserType: "creator",
	}
}

// stubStats returns a fixed answer
type stubStats struct {
	value stats.Stats
	err   error
	delay time.Duration
}

func (s stubStats) Get(ctx context.Context, _ string) (stats.Stats, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return stats.Stats{}, ctx.Err()
		}
	}
	return s.value, s.err
}

// stuckStats ignores its context entirely
type stuckStats struct{ release chan struct{} }

func (s stuckStats) Get(context.Context, string) (stats.Stats, error) {
	<-s.release
	return stats.Stats{Followers: 1}, nil
}

type recordingMetrics struct {
	mu            sync.Mutex
	registrations []string
	fallbacks     []string
	profiles      []appwaitlist.ProfileStatus
}

func (m *recordingMetrics) RegistrationCompleted(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations = append(m.registrations, outcome)
}

func (m *recordingMetrics) StatsFallback(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks = append(m.fallbacks, reason)
}

func (m *recordingMetrics) ProfileAssembled(status appwaitlist.ProfileStatus, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = append(m.profiles, status)
}
