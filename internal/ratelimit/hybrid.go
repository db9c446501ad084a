package ratelimit

import (
	"context"
	"time"
)

// HybridConfig holds the budgets of the hybrid policy.
type HybridConfig struct {
	IPLimit     int
	APIKeyLimit int
	Window      time.Duration
}

// HybridKey builds the limiter key for a route. Requests carrying an API key are counted per
// key, anonymous requests per client address.
func HybridKey(routeName, clientIP, apiKeyID string) string {
	if apiKeyID != "" {
		return routeName + ":key:" + apiKeyID
	}
	return routeName + ":ip:" + clientIP
}

// EnforceHybrid applies the IP budget to anonymous requests and the API key budget to
// authenticated ones. An over-budget request returns a *LimitedError alongside its Result.
func EnforceHybrid(
	ctx context.Context,
	limiter Limiter,
	routeName, clientIP, apiKeyID string,
	cfg HybridConfig,
) (Result, error) {
	limit := cfg.IPLimit
	if apiKeyID != "" {
		limit = cfg.APIKeyLimit
	}

	result, err := limiter.Consume(ctx, HybridKey(routeName, clientIP, apiKeyID), limit, cfg.Window)
	if err != nil {
		return result, err
	}
	if !result.Success {
		return result, &LimitedError{Result: result}
	}
	return result, nil
}
