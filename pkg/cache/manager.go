package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Options tunes how long entries live.
type Options struct {
	// DefaultTTL is used when a response carries no freshness headers.
	DefaultTTL time.Duration

	// StaleRetention keeps expired entries in Redis so they can be revalidated
	// with a conditional request. Only entries with an ETag or Last-Modified are retained.
	StaleRetention time.Duration
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		DefaultTTL:     DefaultTTL,
		StaleRetention: 7 * 24 * time.Hour,
	}
}

// Manager handles caching operations with Redis backend.
type Manager struct {
	redis   *redis.Client
	options Options
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client, opts Options) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.StaleRetention < 0 {
		opts.StaleRetention = 0
	}
	return &Manager{
		redis:   redisClient,
		options: opts,
	}
}

// DefaultTTL returns the TTL applied to responses without freshness headers.
func (m *Manager) DefaultTTL() time.Duration {
	return m.options.DefaultTTL
}

// Ping checks the Redis connection.
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist. A returned entry may be
// expired; callers check IsExpired and revalidate.
func (m *Manager) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	cacheKey := key.String()

	data, err := m.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		_ = m.Delete(ctx, key)
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		CacheMisses.Inc()
		return &entry, nil
	}

	CacheHits.WithLabelValues("redis").Inc()
	return &entry, nil
}

// Set stores a cache entry. The Redis TTL is the entry's freshness plus the
// stale retention window when the entry can be revalidated.
func (m *Manager) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if entry.Revalidatable() {
		ttl += m.options.StaleRetention
	}
	if ttl <= 0 {
		// Already expired and cannot be revalidated, don't cache
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.WithLabelValues("redis").Add(float64(len(data)))

	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// UpdateTTL updates the expiration of an existing cache entry.
// Used after a 304 Not Modified response refreshes a stale entry.
func (m *Manager) UpdateTTL(ctx context.Context, key CacheKey, newExpires time.Time) error {
	entry, err := m.Get(ctx, key)
	if err != nil {
		return err
	}

	entry.Expires = newExpires

	return m.Set(ctx, key, entry)
}
