package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/allisson/envvault/internal/kv"
)

type windowState struct {
	Count     int   `json:"count"`
	ResetAtMs int64 `json:"resetAtMs"`
}

// FixedWindow counts requests in windows that start with the first request after the previous
// window elapsed. A client may spend its whole budget at the end of one window and again at
// the start of the next, so up to twice the limit can pass around a boundary.
type FixedWindow struct {
	store kv.Store
	opts  options
}

// NewFixedWindow creates a fixed window limiter storing state under "rl:fixed:<key>".
func NewFixedWindow(store kv.Store, opts ...Option) *FixedWindow {
	return &FixedWindow{store: store, opts: buildOptions("rl:fixed:", opts)}
}

// Consume records one request for key.
func (f *FixedWindow) Consume(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if err := validateArgs(limit, window); err != nil {
		return Result{}, err
	}

	storeKey := f.opts.prefix + key
	now := f.opts.now()
	nowMs := now.UnixMilli()

	state, err := f.load(ctx, storeKey)
	if err != nil {
		return Result{}, err
	}
	if state == nil || state.ResetAtMs <= nowMs {
		state = &windowState{Count: 0, ResetAtMs: now.Add(window).UnixMilli()}
	}

	resetAt := time.UnixMilli(state.ResetAtMs)
	if state.Count >= limit {
		return Result{
			Success:    false,
			Remaining:  0,
			RetryAfter: resetAt.Sub(now),
			ResetAt:    resetAt,
		}, nil
	}

	state.Count++
	err = kv.PutJSON(ctx, f.store, storeKey, state, kv.PutOptions{ExpirationTTL: resetAt.Sub(now)})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Success:   true,
		Remaining: limit - state.Count,
		ResetAt:   resetAt,
	}, nil
}

func (f *FixedWindow) load(ctx context.Context, key string) (*windowState, error) {
	raw, err := f.store.GetString(ctx, key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state windowState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// Unreadable state starts a new window.
		return nil, nil
	}
	return &state, nil
}
