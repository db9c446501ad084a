// Package cache provides read-through memoization over a kv.Store with lazy TTL expiry and
// tag-based invalidation.
//
// Entries live at "<namespace>:<key>". Each tag keeps an index of member keys at
// "tag:<namespace>:<tag>". Nothing here is atomic: concurrent Remember calls may both run the
// factory, and a Set racing InvalidateByTag may survive the invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/allisson/envvault/internal/errors"
	"github.com/allisson/envvault/internal/kv"
)

// DefaultNamespace is used when a call passes an empty namespace.
const DefaultNamespace = "cache"

const invalidateConcurrency = 8

type entry[T any] struct {
	Data      T        `json:"data"`
	CreatedAt int64    `json:"createdAt"`
	ExpiresAt *int64   `json:"expiresAt,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Cache holds the collaborators shared by the generic cache functions.
type Cache struct {
	store     kv.Store
	namespace string
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithNamespace overrides DefaultNamespace.
func WithNamespace(namespace string) Option {
	return func(c *Cache) {
		if namespace != "" {
			c.namespace = namespace
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger used to report degraded cache operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a Cache over store.
func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{
		store:     store,
		namespace: DefaultNamespace,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) ns(namespace string) string {
	if namespace == "" {
		return c.namespace
	}
	return namespace
}

func (c *Cache) entryKey(key, namespace string) string {
	return c.ns(namespace) + ":" + key
}

func (c *Cache) tagKey(tag, namespace string) string {
	return "tag:" + c.ns(namespace) + ":" + tag
}

// Get returns the value cached at key. An entry past its expiry is deleted and reported as
// not found. Transport failures are returned as errors.
func Get[T any](ctx context.Context, c *Cache, key, namespace string) (T, bool, error) {
	var zero T
	fullKey := c.entryKey(key, namespace)

	e, err := kv.GetJSON[entry[T]](ctx, c.store, fullKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	if e.ExpiresAt != nil && c.now().UnixMilli() > *e.ExpiresAt {
		if err := c.store.Delete(ctx, fullKey); err != nil {
			c.logger.Warn("failed to delete expired cache entry", slog.String("key", fullKey), slog.Any("error", err))
		}
		return zero, false, nil
	}

	return e.Data, true, nil
}

// Set stores value at key. A non-positive ttl means no expiry. Each tag index gains key if it
// is not already a member.
func Set[T any](
	ctx context.Context,
	c *Cache,
	key string,
	value T,
	ttl time.Duration,
	namespace string,
	tags ...string,
) error {
	now := c.now()
	e := entry[T]{Data: value, CreatedAt: now.UnixMilli(), Tags: tags}
	opts := kv.PutOptions{}
	if ttl > 0 {
		expiresAt := now.Add(ttl).UnixMilli()
		e.ExpiresAt = &expiresAt
		opts.ExpirationTTL = ttl
	}

	fullKey := c.entryKey(key, namespace)
	if err := kv.PutJSON(ctx, c.store, fullKey, e, opts); err != nil {
		return err
	}

	for _, tag := range tags {
		if err := c.addToTag(ctx, c.tagKey(tag, namespace), fullKey); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) addToTag(ctx context.Context, tagKey, member string) error {
	members, err := c.tagMembers(ctx, tagKey)
	if err != nil {
		return err
	}
	if slices.Contains(members, member) {
		return nil
	}
	return kv.PutJSON(ctx, c.store, tagKey, append(members, member), kv.PutOptions{})
}

func (c *Cache) tagMembers(ctx context.Context, tagKey string) ([]string, error) {
	raw, err := c.store.GetString(ctx, tagKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var members []string
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		// A corrupt index is rebuilt from scratch.
		c.logger.Warn("discarding corrupt cache tag index", slog.String("key", tagKey), slog.Any("error", err))
		return nil, nil
	}
	return members, nil
}

// Remember returns the cached value at key, or runs factory and caches its result.
//
// There is no mutual exclusion: concurrent misses each run factory and the last write wins.
// A cache that cannot be read or written degrades to calling factory; factory errors are
// returned and never cached.
func Remember[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	namespace string,
	factory func(ctx context.Context) (T, error),
	tags ...string,
) (T, error) {
	value, found, err := Get[T](ctx, c, key, namespace)
	if err != nil {
		c.logger.Warn("cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	if found {
		return value, nil
	}

	value, err = factory(ctx)
	if err != nil {
		return value, err
	}

	if err := Set(ctx, c, key, value, ttl, namespace, tags...); err != nil {
		c.logger.Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return value, nil
}

// InvalidateByTag deletes every entry indexed under tag, then the index itself. Deletions run
// concurrently. The operation is not atomic: entries tagged while it runs may survive.
func (c *Cache) InvalidateByTag(ctx context.Context, tag, namespace string) error {
	tagKey := c.tagKey(tag, namespace)

	members, err := c.tagMembers(ctx, tagKey)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(invalidateConcurrency)
	for _, member := range members {
		g.Go(func() error {
			return c.store.Delete(gctx, member)
		})
	}
	if err := g.Wait(); err != nil {
		return apperrors.Wrap(err, "failed to invalidate cache tag members")
	}

	return c.store.Delete(ctx, tagKey)
}
