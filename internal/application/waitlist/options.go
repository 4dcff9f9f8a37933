package waitlist

import (
	"log/slog"
	"time"
)

// DefaultStatsTimeout bounds a single stats provider call
const DefaultStatsTimeout = 2 * time.Second

// Registration outcomes reported to Metrics
const (
	OutcomeCreated         = "created"
	OutcomeInvalid         = "invalid"
	OutcomeDuplicateEmail  = "duplicate_email"
	OutcomeDuplicateUser   = "duplicate_user"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeStoreFailure    = "store_failure"
)

// Metrics receives operational signals from the use cases
type Metrics interface {
	RegistrationCompleted(outcome string)
	StatsFallback(reason string)
	ProfileAssembled(status ProfileStatus, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RegistrationCompleted(string)                  {}
func (noopMetrics) StatsFallback(string)                          {}
func (noopMetrics) ProfileAssembled(ProfileStatus, time.Duration) {}

type options struct {
	logger       *slog.Logger
	metrics      Metrics
	statsTimeout time.Duration
}

// Option configures a use case
type Option func(*options)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithStatsTimeout overrides DefaultStatsTimeout
func WithStatsTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.statsTimeout = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:       slog.Default(),
		metrics:      noopMetrics{},
		statsTimeout: DefaultStatsTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
