package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/envvault/internal/errors"
	"github.com/allisson/envvault/internal/kv"
)

// brokenStore fails every write.
type brokenStore struct {
	kv.Store
}

func (brokenStore) PutString(ctx context.Context, key, value string, opts kv.PutOptions) error {
	return apperrors.ErrUnavailable
}

func TestRunKVHealth(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("healthy-text", func(t *testing.T) {
		var out bytes.Buffer
		err := RunKVHealth(ctx, kv.NewMemoryStore(), logger, "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		assert.Contains(t, out.String(), "KV store healthy")
	})

	t.Run("healthy-json", func(t *testing.T) {
		store := kv.NewMemoryStore()

		var out bytes.Buffer
		require.NoError(t, RunKVHealth(ctx, store, logger, "json", IOTuple{Writer: &out}))

		var result KVHealthResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.True(t, result.OK)
		assert.Empty(t, result.Error)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("unhealthy", func(t *testing.T) {
		var out bytes.Buffer
		err := RunKVHealth(ctx, brokenStore{}, logger, "text", IOTuple{Writer: &out})

		require.Error(t, err)
		assert.Contains(t, out.String(), "KV store unhealthy")
	})
}
