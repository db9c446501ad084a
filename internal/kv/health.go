package kv

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const healthKeyPrefix = "health:"

// ProbeResult is the outcome of a round-trip check against the store.
type ProbeResult struct {
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"-"`
	Error   string        `json:"error,omitempty"`
}

// LatencyMs returns the probe latency in milliseconds.
func (r ProbeResult) LatencyMs() int64 {
	return r.Latency.Milliseconds()
}

// Probe writes a random nonce, reads it back and deletes it. It never relies on cached
// state, so a success means the store accepted a write and served the same value back.
func Probe(ctx context.Context, store Store) ProbeResult {
	start := time.Now()
	nonce := uuid.Must(uuid.NewV7()).String()
	key := healthKeyPrefix + nonce

	result := ProbeResult{}

	if err := store.PutString(ctx, key, nonce, PutOptions{ExpirationTTL: MinTTL}); err != nil {
		result.Error = err.Error()
		return finish(result, start)
	}

	value, err := store.GetString(ctx, key)
	if err != nil {
		result.Error = err.Error()
		return finish(result, start)
	}
	if value != nonce {
		result.Error = "kv returned a different value than written"
		return finish(result, start)
	}

	if err := store.Delete(ctx, key); err != nil {
		result.Error = err.Error()
		return finish(result, start)
	}

	result.OK = true
	return finish(result, start)
}

func finish(result ProbeResult, start time.Time) ProbeResult {
	result.Latency = time.Since(start)
	return result
}
