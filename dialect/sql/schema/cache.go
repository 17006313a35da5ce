package schema

import (
	"context"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

// Cache is the interface for caching table metadata. Users may implement it
// with their preferred backing store (e.g. Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// MemoryCache is a process-local Cache backed by a map.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && time.Now().After(e.expires)) {
		return nil, nil
	}
	return e.value, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// CachedProvider wraps a Provider with a Cache. Entries are msgpack-encoded;
// concurrent lookups of the same table are collapsed into a single upstream
// call. Absent tables are not cached so late DDL is picked up.
type CachedProvider struct {
	src   Provider
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedProvider wraps src with the given cache. A zero ttl means entries
// never expire.
func NewCachedProvider(src Provider, cache Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{src: src, cache: cache, ttl: ttl}
}

// Table implements Provider.
func (p *CachedProvider) Table(ctx context.Context, name string) (*Table, error) {
	key := "dbx:schema:" + name
	if data, err := p.cache.Get(ctx, key); err == nil && data != nil {
		var t Table
		if err := msgpack.Unmarshal(data, &t); err == nil {
			return &t, nil
		}
		// Corrupt entry: fall through and refresh.
		_ = p.cache.Delete(ctx, key)
	}
	v, err, _ := p.group.Do(name, func() (any, error) {
		t, err := p.src.Table(ctx, name)
		if err != nil || t == nil {
			return t, err
		}
		if data, err := msgpack.Marshal(t); err == nil {
			_ = p.cache.Set(ctx, key, data, p.ttl)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	t, _ := v.(*Table)
	return t, nil
}

// Invalidate drops the cached entry for a table, forcing the next lookup to
// hit the source provider.
func (p *CachedProvider) Invalidate(ctx context.Context, name string) error {
	return p.cache.Delete(ctx, "dbx:schema:"+name)
}
