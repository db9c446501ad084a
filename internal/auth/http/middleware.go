package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/allisson/envvault/internal/auth/usecase"
	apperrors "github.com/allisson/envvault/internal/errors"
	"github.com/allisson/envvault/internal/httputil"
)

const bearerPrefix = "bearer "

// AuthenticationMiddleware resolves a Bearer API key from the Authorization header into a
// Caller stored in the request context.
//
// Requests without an Authorization header, and requests whose header fails to authenticate,
// continue anonymously so the rate limiter charges them to the IP budget. The failure is kept
// in the request context and RequireCaller reports it afterwards.
//
// Authorization header format: "Bearer evk_<id>.<secret>" (case-insensitive "bearer")
//
// Usage:
//
//	router.Use(AuthenticationMiddleware(apiKeyUseCase, logger))
//	router.Use(ratelimitHTTP.RateLimitMiddleware(limiter, cfg, logger))
//	router.Use(RequireCaller(logger))
func AuthenticationMiddleware(apiKeyUseCase authUseCase.APIKeyUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Parse Bearer token (case-insensitive)
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			deferAuthFailure(c, apperrors.ErrUnauthorized)
			return
		}

		plainToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			deferAuthFailure(c, apperrors.ErrUnauthorized)
			return
		}

		caller, err := apiKeyUseCase.Authenticate(c.Request.Context(), plainToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			deferAuthFailure(c, err)
			return
		}

		ctx := WithCaller(c.Request.Context(), caller)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("api_key_id", caller.APIKeyID.String()),
			slog.String("user_id", caller.UserID.String()))

		c.Next()
	}
}

// deferAuthFailure records err and lets the request continue without a caller.
func deferAuthFailure(c *gin.Context, err error) {
	c.Request = c.Request.WithContext(withAuthError(c.Request.Context(), err))
	c.Next()
}

// RequireCaller rejects requests without a caller. It reports the failure recorded by
// AuthenticationMiddleware (401, or 503 when the key lookup was unavailable) and 401 for
// requests that sent no credentials.
func RequireCaller(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetCaller(c.Request.Context()); !ok {
			err := authError(c.Request.Context())
			if err == nil {
				err = apperrors.ErrUnauthorized
			}
			logger.Debug("request rejected: no authenticated caller",
				slog.String("path", c.FullPath()),
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}
		c.Next()
	}
}
