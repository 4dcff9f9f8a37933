// Package appcore provides core application interfaces and shared utilities.
package appcore

import (
	"context"
	"time"
)

// HealthChecker checks one dependency of the service, such as the waitlist
// store or the Redis instance behind stats.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) HealthStatus
}

// HealthStatus is the outcome of a single check. Latency is set only for
// successful checks.
type HealthStatus struct {
	Healthy   bool
	Message   string
	Latency   time.Duration
	CheckedAt time.Time
}
