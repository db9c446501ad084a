// Package http provides the gin middleware that applies the KV-backed rate limiter.
package http

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/envvault/internal/errors"
	"github.com/allisson/envvault/internal/httputil"
	"github.com/allisson/envvault/internal/ratelimit"
)

const (
	headerRemaining = "X-RateLimit-Remaining"
	headerReset     = "X-RateLimit-Reset"
)

// MiddlewareConfig configures RateLimitMiddleware.
type MiddlewareConfig struct {
	// RouteName scopes the budget. Empty uses the matched gin route pattern.
	RouteName string
	// Hybrid holds the IP and API key budgets.
	Hybrid ratelimit.HybridConfig
	// FailOpen lets requests through when the store is unavailable. The default rejects
	// them with 503.
	FailOpen bool
	// APIKeyID extracts the authenticated API key id. Nil treats every request as anonymous.
	APIKeyID func(c *gin.Context) string
}

// RateLimitMiddleware enforces the hybrid policy on every request.
//
// Responses carry X-RateLimit-Remaining and X-RateLimit-Reset (epoch milliseconds). Rejected
// requests get 429 with Retry-After in whole seconds.
func RateLimitMiddleware(limiter ratelimit.Limiter, cfg MiddlewareConfig, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := cfg.RouteName
		if route == "" {
			route = c.FullPath()
		}
		apiKeyID := ""
		if cfg.APIKeyID != nil {
			apiKeyID = cfg.APIKeyID(c)
		}

		result, err := ratelimit.EnforceHybrid(
			c.Request.Context(),
			limiter,
			route,
			c.ClientIP(),
			apiKeyID,
			cfg.Hybrid,
		)

		var limited *ratelimit.LimitedError
		switch {
		case err == nil:
			setHeaders(c, result)
			c.Next()

		case apperrors.As(err, &limited):
			setHeaders(c, result)
			logger.Debug("rate limit exceeded",
				slog.String("route", route),
				slog.Bool("api_key", apiKeyID != ""),
				slog.Int("retry_after", limited.RetryAfterSeconds()))
			httputil.HandleErrorGin(c, err, nil)
			c.Abort()

		case cfg.FailOpen && apperrors.Is(err, apperrors.ErrUnavailable):
			logger.Warn("rate limiter unavailable, failing open",
				slog.String("route", route),
				slog.Any("error", err))
			c.Next()

		default:
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
		}
	}
}

func setHeaders(c *gin.Context, result ratelimit.Result) {
	c.Header(headerRemaining, strconv.Itoa(result.Remaining))
	if !result.ResetAt.IsZero() {
		c.Header(headerReset, strconv.FormatInt(result.ResetAt.UnixMilli(), 10))
	}
}
