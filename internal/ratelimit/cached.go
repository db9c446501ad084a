package ratelimit

import (
	"context"
	"time"

	"github.com/allisson/envvault/internal/cache"
)

// CachedDecisionTTL is how long a decision is reused by Cached.
const CachedDecisionTTL = time.Second

const cachedNamespace = "rl-decision"

// Cached memoizes the decisions of another Limiter for CachedDecisionTTL.
//
// This is an approximation: every check for the same key inside that second observes the same
// decision and only the first one consumes budget. It trades accuracy for fewer KV writes.
type Cached struct {
	next  Limiter
	cache *cache.Cache
}

// NewCached wraps next with decision caching.
func NewCached(next Limiter, c *cache.Cache) *Cached {
	return &Cached{next: next, cache: c}
}

// Consume returns the cached decision for key, or asks the wrapped limiter.
func (c *Cached) Consume(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	return cache.Remember(ctx, c.cache, key, CachedDecisionTTL, cachedNamespace,
		func(ctx context.Context) (Result, error) {
			return c.next.Consume(ctx, key, limit, window)
		},
	)
}
