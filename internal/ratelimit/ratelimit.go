// Package ratelimit implements request budgets stored in a kv.Store.
//
// Two algorithms are provided: a fixed window counter and a sliding window log. Both do a
// plain read-modify-write on the store with no compare-and-swap, so concurrent requests for
// the same key can lose updates and admit slightly more than the limit. Callers that need a
// strict ceiling must not rely on this package.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	apperrors "github.com/allisson/envvault/internal/errors"
)

// Result is the outcome of one Consume call.
type Result struct {
	Success    bool          `json:"success"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retryAfter"`
	ResetAt    time.Time     `json:"resetAt"`
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds.
func (r Result) RetryAfterSeconds() int {
	if r.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(r.RetryAfter.Seconds()))
}

// Limiter consumes one unit of budget for key.
type Limiter interface {
	Consume(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// LimitedError is returned when a request is over budget.
type LimitedError struct {
	Result Result
}

// Error implements error.
func (e *LimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %ds", e.Result.RetryAfterSeconds())
}

// RetryAfterSeconds returns the delay before the client may retry, rounded up.
func (e *LimitedError) RetryAfterSeconds() int {
	return e.Result.RetryAfterSeconds()
}

// Unwrap exposes apperrors.ErrTooManyRequests for errors.Is checks.
func (e *LimitedError) Unwrap() error {
	return apperrors.ErrTooManyRequests
}

// Option configures the KV-backed limiters.
type Option func(*options)

type options struct {
	prefix string
	now    func() time.Time
}

// WithPrefix overrides the KV key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(defaultPrefix string, opts []Option) options {
	o := options{prefix: defaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func validateArgs(limit int, window time.Duration) error {
	if limit <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "rate limit must be positive")
	}
	if window <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "rate limit window must be positive")
	}
	return nil
}
