package ratelimit

import (
	"context"
	"time"

	"github.com/allisson/envvault/internal/metrics"
)

// limiterWithMetrics decorates a Limiter with metrics instrumentation.
type limiterWithMetrics struct {
	next      Limiter
	metrics   metrics.BusinessMetrics
	operation string
}

// NewLimiterWithMetrics wraps a Limiter with decision metrics. Status is "allowed", "limited"
// or "error".
func NewLimiterWithMetrics(limiter Limiter, m metrics.BusinessMetrics, operation string) Limiter {
	return &limiterWithMetrics{next: limiter, metrics: m, operation: operation}
}

// Consume records metrics for rate limit decisions.
func (l *limiterWithMetrics) Consume(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) (Result, error) {
	start := time.Now()
	result, err := l.next.Consume(ctx, key, limit, window)

	status := "allowed"
	switch {
	case err != nil:
		status = "error"
	case !result.Success:
		status = "limited"
	}

	l.metrics.RecordOperation(ctx, "ratelimit", l.operation, status)
	l.metrics.RecordDuration(ctx, "ratelimit", l.operation, time.Since(start), status)

	return result, err
}
