// Package kv defines the key-value collaborator used by the cache layer and the rate limiter.
//
// The contract mirrors an eventually consistent edge KV service: plain get/put/delete/list
// with an optional per-key TTL and metadata. There are no transactions, no compare-and-swap
// and no atomic increments, so callers must tolerate lost updates on read-modify-write cycles.
//
// Three implementations are provided:
//   - MemoryStore: in-process fake used by tests and single-node development
//   - HTTPStore: REST client for a hosted KV namespace (production)
//   - RedisStore: Redis-backed store for self-hosted deployments
package kv

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/allisson/envvault/internal/errors"
)

// MinTTL is the smallest expiration the backing stores honor. Shorter TTLs are clamped up.
const MinTTL = 60 * time.Second

// ErrKeyNotFound indicates the key does not exist or has expired.
var ErrKeyNotFound = apperrors.Wrap(apperrors.ErrNotFound, "kv key not found")

// ErrInvalidCursor indicates a list cursor that was not produced by the same store.
var ErrInvalidCursor = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid kv list cursor")

// PutOptions holds optional write parameters.
type PutOptions struct {
	// ExpirationTTL is the time to live of the key. Zero or negative means no expiry.
	ExpirationTTL time.Duration
	// Metadata is an arbitrary JSON-serializable document attached to the key.
	Metadata map[string]any
}

// ListOptions holds the parameters of a key listing.
type ListOptions struct {
	Prefix string
	Cursor string
	// Limit caps the number of keys returned. Zero means the backend default (1000).
	Limit int
}

// KeyInfo describes one listed key.
type KeyInfo struct {
	Name       string
	Expiration *time.Time
	Metadata   map[string]any
}

// ListResult is one page of a key listing. Cursor is empty on the last page.
type ListResult struct {
	Keys   []KeyInfo
	Cursor string
}

// Store is the key-value collaborator contract.
//
// Implementations return ErrKeyNotFound for absent keys and wrap transport failures with
// apperrors.ErrUnavailable so callers can decide between failing open and failing closed.
type Store interface {
	GetString(ctx context.Context, key string) (string, error)
	PutString(ctx context.Context, key, value string, opts PutOptions) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, opts ListOptions) (ListResult, error)
}

// GetJSON reads key and decodes its JSON value into T.
func GetJSON[T any](ctx context.Context, store Store, key string) (T, error) {
	var value T

	raw, err := store.GetString(ctx, key)
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, apperrors.Wrap(err, "failed to decode kv value")
	}

	return value, nil
}

// PutJSON encodes value as JSON and writes it to key.
func PutJSON(ctx context.Context, store Store, key string, value any, opts PutOptions) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode kv value")
	}
	return store.PutString(ctx, key, string(raw), opts)
}

// ClampTTL applies the store granularity rules: non-positive values mean no expiry,
// anything below MinTTL becomes MinTTL and the rest is rounded up to whole seconds.
func ClampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if ttl < MinTTL {
		return MinTTL
	}
	if rem := ttl % time.Second; rem != 0 {
		ttl += time.Second - rem
	}
	return ttl
}

func defaultLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 1000
	}
	return limit
}
