package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/allisson/envvault/internal/kv"
)

type loggedRequest struct {
	Timestamp int64 `json:"timestamp"`
	Weight    int   `json:"weight"`
}

type slidingState struct {
	Requests []loggedRequest `json:"requests"`
}

// SlidingWindow keeps a log of admitted requests and their weights. A request is admitted
// when the weights logged in the trailing window plus its own weight stay within the limit.
type SlidingWindow struct {
	store kv.Store
	opts  options
}

// NewSlidingWindow creates a sliding window limiter storing state under "rl:sliding:<key>".
func NewSlidingWindow(store kv.Store, opts ...Option) *SlidingWindow {
	return &SlidingWindow{store: store, opts: buildOptions("rl:sliding:", opts)}
}

// Consume records one request of weight 1 for key.
func (s *SlidingWindow) Consume(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	return s.ConsumeWeighted(ctx, key, limit, window, 1)
}

// ConsumeWeighted records one request of the given weight for key.
func (s *SlidingWindow) ConsumeWeighted(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
	weight int,
) (Result, error) {
	if err := validateArgs(limit, window); err != nil {
		return Result{}, err
	}
	if weight <= 0 {
		weight = 1
	}

	storeKey := s.opts.prefix + key
	now := s.opts.now()
	nowMs := now.UnixMilli()
	windowMs := window.Milliseconds()

	state, err := s.load(ctx, storeKey)
	if err != nil {
		return Result{}, err
	}

	kept := state.Requests[:0]
	used := 0
	for _, req := range state.Requests {
		if req.Timestamp <= nowMs-windowMs {
			continue
		}
		kept = append(kept, req)
		used += req.Weight
	}
	state.Requests = kept

	if used+weight > limit {
		retryAt := nowMs + windowMs
		if len(state.Requests) > 0 {
			retryAt = state.Requests[0].Timestamp + windowMs
		}
		resetAt := time.UnixMilli(retryAt)
		return Result{
			Success:    false,
			Remaining:  max(limit-used, 0),
			RetryAfter: resetAt.Sub(now),
			ResetAt:    resetAt,
		}, nil
	}

	state.Requests = append(state.Requests, loggedRequest{Timestamp: nowMs, Weight: weight})
	if err := kv.PutJSON(ctx, s.store, storeKey, state, kv.PutOptions{ExpirationTTL: window}); err != nil {
		return Result{}, err
	}

	return Result{
		Success:   true,
		Remaining: limit - used - weight,
		ResetAt:   time.UnixMilli(state.Requests[0].Timestamp + windowMs),
	}, nil
}

func (s *SlidingWindow) load(ctx context.Context, key string) (*slidingState, error) {
	raw, err := s.store.GetString(ctx, key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return &slidingState{}, nil
	}
	if err != nil {
		return nil, err
	}

	var state slidingState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return &slidingState{}, nil
	}
	return &state, nil
}
