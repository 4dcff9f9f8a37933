package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	appwaitlist "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/infrastructure/metrics"
)

// compile-time check
var _ appwaitlist.Metrics = (*metrics.WaitlistMetrics)(nil)

func TestWaitlistMetrics_Registration(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := metrics.NewWaitlistMetrics(registry)

	if m.Registrations == nil || m.StatsFallbacks == nil || m.ProfileDuration == nil || m.ProfilesAssembled == nil {
		t.Fatal("metrics not initialized")
	}
}

func TestWaitlistMetrics_DoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics.NewWaitlistMetrics(registry)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	metrics.NewWaitlistMetrics(registry)
}

func TestWaitlistMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWaitlistMetrics(registry)

	m.RegistrationCompleted(appwaitlist.OutcomeCreated)
	m.RegistrationCompleted(appwaitlist.OutcomeCreated)
	m.RegistrationCompleted(appwaitlist.OutcomeDuplicateEmail)
	m.StatsFallback("timeout")

	if got := testutil.ToFloat64(m.Registrations.WithLabelValues(appwaitlist.OutcomeCreated)); got != 2 {
		t.Errorf("created registrations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Registrations.WithLabelValues(appwaitlist.OutcomeDuplicateEmail)); got != 1 {
		t.Errorf("duplicate_email registrations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StatsFallbacks.WithLabelValues("timeout")); got != 1 {
		t.Errorf("timeout fallbacks = %v, want 1", got)
	}
}

func TestWaitlistMetrics_ProfileAssembled(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWaitlistMetrics(registry)

	m.ProfileAssembled(appwaitlist.ProfileAbsent, 3*time.Millisecond)
	m.ProfileAssembled(appwaitlist.ProfileComplete, 12*time.Millisecond)

	if got := testutil.ToFloat64(m.ProfilesAssembled.WithLabelValues("absent")); got != 1 {
		t.Errorf("absent profiles = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.ProfileDuration); got != 2 {
		t.Errorf("histogram series = %d, want 2", got)
	}
}
