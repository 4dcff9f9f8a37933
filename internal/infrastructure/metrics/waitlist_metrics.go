package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appwaitlist "github.com/lllypuk/waitlist/internal/application/waitlist"
)

// WaitlistMetrics contains Prometheus metrics for registration and profile
// assembly. It implements appwaitlist.Metrics.
type WaitlistMetrics struct {
	Registrations     *prometheus.CounterVec
	StatsFallbacks    *prometheus.CounterVec
	ProfileDuration   *prometheus.HistogramVec
	ProfilesAssembled *prometheus.CounterVec
}

// NewWaitlistMetrics creates and registers waitlist metrics with the given registerer.
func NewWaitlistMetrics(registerer prometheus.Registerer) *WaitlistMetrics {
	metrics := &WaitlistMetrics{
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_registrations_total",
				Help: "Total number of registration attempts by outcome",
			},
			[]string{"outcome"}, // created/invalid/duplicate_email/duplicate_user/unauthenticated/store_failure
		),
		StatsFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_stats_fallbacks_total",
				Help: "Stats lookups answered with zero stats",
			},
			[]string{"reason"}, // timeout/invalid/error
		),
		ProfileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "waitlist_profile_assembly_duration_seconds",
				Help:    "Time to assemble a profile view",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"status"},
		),
		ProfilesAssembled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_profiles_total",
				Help: "Profiles served by status",
			},
			[]string{"status"}, // complete/absent
		),
	}

	registerer.MustRegister(
		metrics.Registrations,
		metrics.StatsFallbacks,
		metrics.ProfileDuration,
		metrics.ProfilesAssembled,
	)

	return metrics
}

// RegistrationCompleted counts one registration attempt
func (m *WaitlistMetrics) RegistrationCompleted(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

// StatsFallback counts one degraded stats lookup
func (m *WaitlistMetrics) StatsFallback(reason string) {
	m.StatsFallbacks.WithLabelValues(reason).Inc()
}

// ProfileAssembled records one profile request
func (m *WaitlistMetrics) ProfileAssembled(status appwaitlist.ProfileStatus, elapsed time.Duration) {
	m.ProfilesAssembled.WithLabelValues(string(status)).Inc()
	m.ProfileDuration.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}
