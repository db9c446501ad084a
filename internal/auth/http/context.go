// Package http provides HTTP middleware, handlers and utilities for API key authentication.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
)

// callerKey is a context key type for storing authenticated callers.
type callerKey struct{}

type authErrorKey struct{}

// WithCaller stores an authenticated caller in the context.
// This is typically called by the authentication middleware after successful key validation.
func WithCaller(ctx context.Context, caller *authDomain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCaller retrieves an authenticated caller from the context.
// Returns (caller, true) if a caller is present, or (nil, false) for anonymous requests.
func GetCaller(ctx context.Context) (*authDomain.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(*authDomain.Caller)
	return caller, ok && caller != nil
}

// APIKeyID returns the authenticated API key id of the request, or "" when anonymous.
// It plugs into the rate limit middleware to pick the API key budget.
func APIKeyID(c *gin.Context) string {
	caller, ok := GetCaller(c.Request.Context())
	if !ok {
		return ""
	}
	return caller.APIKeyID.String()
}

func withAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, authErrorKey{}, err)
}

// authError returns the authentication failure recorded for the request, if any.
func authError(ctx context.Context) error {
	err, _ := ctx.Value(authErrorKey{}).(error)
	return err
}
