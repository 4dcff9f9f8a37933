package waitlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/waitlist/internal/domain/stats"
)

// source names one upstream of an assembled view
type source string

const (
	sourceEntry source = "entry"
	sourceStats source = "stats"
)

// Fallback reasons reported to Metrics
const (
	fallbackTimeout = "timeout"
	fallbackInvalid = "invalid"
	fallbackError   = "error"
)

var errInvalidStats = errors.New("stats provider returned negative values")

// sourceResult is the tagged outcome of one upstream call. Merge policy is
// decided per source by the caller: entry failures are fatal, stats failures
// fall back to zero.
type sourceResult[T any] struct {
	source source
	value  T
	err    error
}

func (r sourceResult[T]) failed() bool { return r.err != nil }

// lookupStats calls the provider with its own deadline. A provider that
// ignores ctx still cannot hold the caller past the timeout.
func lookupStats(ctx context.Context, provider StatsProvider, o options, userID string) sourceResult[stats.Stats] {
	ctx, cancel := context.WithTimeout(ctx, o.statsTimeout)
	defer cancel()

	done := make(chan sourceResult[stats.Stats], 1)
	go func() {
		s, err := provider.Get(ctx, userID)
		done <- sourceResult[stats.Stats]{source: sourceStats, value: s, err: err}
	}()

	var res sourceResult[stats.Stats]
	select {
	case res = <-done:
	case <-ctx.Done():
		res = sourceResult[stats.Stats]{source: sourceStats, err: ctx.Err()}
	}

	if res.err == nil && !res.value.IsValid() {
		res.err = fmt.Errorf("%w: %+v", errInvalidStats, res.value)
	}
	if errors.Is(res.err, context.Canceled) {
		// the caller or the sibling entry lookup gave up; nothing is served
		res.value = stats.Zero()
		return res
	}
	if res.failed() {
		reason := fallbackError
		switch {
		case errors.Is(res.err, context.DeadlineExceeded):
			reason = fallbackTimeout
		case errors.Is(res.err, errInvalidStats):
			reason = fallbackInvalid
		}
		o.metrics.StatsFallback(reason)
		o.logger.WarnContext(ctx, "stats unavailable, using zero stats",
			"user_id", userID,
			"reason", reason,
			"error", res.err,
		)
		res.value = stats.Zero()
	}
	return res
}
