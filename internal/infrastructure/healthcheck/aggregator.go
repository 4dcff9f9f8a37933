package healthcheck

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lllypuk/waitlist/internal/application/appcore"
	"github.com/lllypuk/waitlist/internal/infrastructure/httpserver"
)

// DefaultCheckTimeout bounds every individual check.
const DefaultCheckTimeout = 3 * time.Second

type registered struct {
	checker  appcore.HealthChecker
	critical bool
}

// Aggregator runs every registered checker concurrently. A failing critical
// checker makes the service unready; a failing optional one only degrades it.
type Aggregator struct {
	checks  []registered
	timeout time.Duration
	logger  *slog.Logger
}

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// WithCheckTimeout overrides DefaultCheckTimeout.
func WithCheckTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithAggregatorLogger sets the logger used for failed checks.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an empty aggregator.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		timeout: DefaultCheckTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Critical registers a checker whose failure makes /ready return 503.
func (a *Aggregator) Critical(checker appcore.HealthChecker) *Aggregator {
	a.checks = append(a.checks, registered{checker: checker, critical: true})
	return a
}

// Optional registers a checker whose failure only marks the service degraded.
func (a *Aggregator) Optional(checker appcore.HealthChecker) *Aggregator {
	a.checks = append(a.checks, registered{checker: checker})
	return a
}

// IsReady implements httpserver.HealthChecker.
func (a *Aggregator) IsReady(ctx context.Context) bool {
	for _, status := range a.GetHealthStatus(ctx) {
		if status.Status == httpserver.StatusUnhealthy {
			return false
		}
	}
	return true
}

// GetHealthStatus implements httpserver.HealthChecker.
func (a *Aggregator) GetHealthStatus(ctx context.Context) []httpserver.ComponentStatus {
	statuses := make([]httpserver.ComponentStatus, len(a.checks))

	var g errgroup.Group
	for i, rc := range a.checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			result := rc.checker.Check(checkCtx)
			status := httpserver.ComponentStatus{
				Name:      rc.checker.Name(),
				Status:    httpserver.StatusHealthy,
				Message:   result.Message,
				LatencyMS: result.Latency.Milliseconds(),
			}
			if !result.Healthy {
				status.Status = httpserver.StatusDegraded
				if rc.critical {
					status.Status = httpserver.StatusUnhealthy
				}
				a.logger.WarnContext(ctx, "health check failed",
					slog.String("component", status.Name),
					slog.Bool("critical", rc.critical),
					slog.String("message", result.Message),
				)
			}
			statuses[i] = status
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}

var _ httpserver.HealthChecker = (*Aggregator)(nil)
