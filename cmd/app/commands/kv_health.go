package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/envvault/internal/kv"
)

const kvHealthTimeout = 10 * time.Second

// KVHealthResult is printed by kv-health.
type KVHealthResult struct {
	OK        bool   `json:"ok"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// RunKVHealth performs one write/read/delete round trip against store and reports it.
// A failed probe is returned as an error so the process exits non-zero.
func RunKVHealth(ctx context.Context, store kv.Store, logger *slog.Logger, format string, io IOTuple) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, kvHealthTimeout)
	defer cancel()

	probe := kv.Probe(ctx, store)
	result := KVHealthResult{OK: probe.OK, LatencyMs: probe.LatencyMs(), Error: probe.Error}

	if format == "json" {
		if err := outputJSON(result, io.Writer); err != nil {
			return err
		}
	} else if result.OK {
		_, _ = fmt.Fprintf(io.Writer, "KV store healthy (%d ms)\n", result.LatencyMs)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "KV store unhealthy (%d ms): %s\n", result.LatencyMs, result.Error)
	}

	if !result.OK {
		logger.Error("kv health check failed", slog.String("error", result.Error))
		return errors.New("kv health check failed")
	}
	logger.Info("kv health check passed", slog.Int64("latency_ms", result.LatencyMs))
	return nil
}
