package kv

import (
	"context"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
	metadata  map[string]any
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-process Store. It honors the same TTL clamping as the remote
// backends so code exercised against it behaves like production. Expired keys are
// dropped lazily on access.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the time source, mainly for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetString returns the value stored at key.
func (s *MemoryStore) GetString(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", ErrKeyNotFound
	}
	if now := s.now(); entry.expired(now) {
		s.deleteIfExpired(key, now)
		return "", ErrKeyNotFound
	}
	return entry.value, nil
}

// deleteIfExpired drops key unless a writer replaced it with a live entry since it was read.
func (s *MemoryStore) deleteIfExpired(key string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.entries[key]; ok && current.expired(now) {
		delete(s.entries, key)
	}
}

// PutString stores value at key, replacing any previous value.
func (s *MemoryStore) PutString(ctx context.Context, key, value string, opts PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := memoryEntry{value: value}
	if ttl := ClampTTL(opts.ExpirationTTL); ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	if opts.Metadata != nil {
		entry.metadata = maps.Clone(opts.Metadata)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// List returns keys in lexicographic order. The cursor is the offset of the next page.
func (s *MemoryStore) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	if err := ctx.Err(); err != nil {
		return ListResult{}, err
	}

	offset := 0
	if opts.Cursor != "" {
		parsed, err := strconv.Atoi(opts.Cursor)
		if err != nil || parsed < 0 {
			return ListResult{}, ErrInvalidCursor
		}
		offset = parsed
	}

	now := s.now()
	s.mu.RLock()
	names := make([]string, 0, len(s.entries))
	for name, entry := range s.entries {
		if entry.expired(now) || !strings.HasPrefix(name, opts.Prefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	limit := defaultLimit(opts.Limit)
	result := ListResult{}
	for i := offset; i < len(names) && len(result.Keys) < limit; i++ {
		entry := s.entries[names[i]]
		info := KeyInfo{Name: names[i], Metadata: maps.Clone(entry.metadata)}
		if !entry.expiresAt.IsZero() {
			expiration := entry.expiresAt
			info.Expiration = &expiration
		}
		result.Keys = append(result.Keys, info)
	}
	s.mu.RUnlock()

	if next := offset + len(result.Keys); next < len(names) {
		result.Cursor = strconv.Itoa(next)
	}
	return result, nil
}

// Len returns the number of physical entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
