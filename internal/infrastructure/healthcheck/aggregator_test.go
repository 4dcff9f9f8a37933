package healthcheck_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/waitlist/internal/infrastructure/healthcheck"
	"github.com/lllypuk/waitlist/internal/infrastructure/httpserver"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestAggregator_AllHealthy(t *testing.T) {
	agg := healthcheck.NewAggregator().
		Critical(healthcheck.NewFuncChecker("store", ok)).
		Optional(healthcheck.NewFuncChecker("stats", ok))

	statuses := agg.GetHealthStatus(context.Background())

	require.Len(t, statuses, 2)
	assert.Equal(t, "store", statuses[0].Name)
	assert.Equal(t, httpserver.StatusHealthy, statuses[0].Status)
	assert.Equal(t, httpserver.StatusHealthy, statuses[1].Status)
	assert.True(t, agg.IsReady(context.Background()))
}

func TestAggregator_OptionalFailureDegrades(t *testing.T) {
	agg := healthcheck.NewAggregator().
		Critical(healthcheck.NewFuncChecker("store", ok)).
		Optional(healthcheck.NewFuncChecker("stats", failing))

	statuses := agg.GetHealthStatus(context.Background())

	assert.Equal(t, httpserver.StatusDegraded, statuses[1].Status)
	assert.Equal(t, "connection refused", statuses[1].Message)
	assert.True(t, agg.IsReady(context.Background()))
}

func TestAggregator_CriticalFailureNotReady(t *testing.T) {
	agg := healthcheck.NewAggregator().
		Critical(healthcheck.NewFuncChecker("store", failing))

	statuses := agg.GetHealthStatus(context.Background())

	assert.Equal(t, httpserver.StatusUnhealthy, statuses[0].Status)
	assert.False(t, agg.IsReady(context.Background()))
}

func TestAggregator_CheckTimeout(t *testing.T) {
	slow := healthcheck.NewFuncChecker("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	agg := healthcheck.NewAggregator(healthcheck.WithCheckTimeout(20 * time.Millisecond)).Critical(slow)

	start := time.Now()
	ready := agg.IsReady(context.Background())

	assert.False(t, ready)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCheckers_NilClients(t *testing.T) {
	mongoStatus := healthcheck.NewMongoChecker(nil).Check(context.Background())
	redisStatus := healthcheck.NewRedisChecker(nil).Check(context.Background())

	assert.False(t, mongoStatus.Healthy)
	assert.False(t, redisStatus.Healthy)
	assert.Equal(t, "mongodb", healthcheck.NewMongoChecker(nil).Name())
	assert.Equal(t, "redis", healthcheck.NewRedisChecker(nil).Name())
}
