package pubfront

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/eringen/pubfront/api"
	"github.com/eringen/pubfront/logger"
)

// CacheBackend stores opaque values with a TTL.
type CacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryItem struct {
	value   []byte
	expires time.Time
}

// MemoryBackend is an in-process CacheBackend. Expired entries are dropped
// when read.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(item.expires) {
		m.mu.Lock()
		if cur, ok := m.items[key]; ok && cur.expires.Equal(item.expires) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return item.value, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.items[key] = memoryItem{value: value, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

const recentKey = "articles:recent"

// IndexCache caches the newest articles used by the feed and the sitemap.
// Backend failures are logged and fall through to the API.
type IndexCache struct {
	backend CacheBackend
	ttl     time.Duration
	fetch   func(ctx context.Context) ([]api.Article, error)
}

// NewIndexCache creates an IndexCache that refills itself through fetch.
func NewIndexCache(backend CacheBackend, ttl time.Duration, fetch func(ctx context.Context) ([]api.Article, error)) *IndexCache {
	return &IndexCache{backend: backend, ttl: ttl, fetch: fetch}
}

// Recent returns the cached article list, fetching it on a miss.
func (c *IndexCache) Recent(ctx context.Context) ([]api.Article, error) {
	data, ok, err := c.backend.Get(ctx, recentKey)
	switch {
	case err != nil:
		logger.Warn().Err(err).Str("key", recentKey).Msg("cache read failed")
	case ok:
		var articles []api.Article
		if err := json.Unmarshal(data, &articles); err == nil {
			return articles, nil
		}
		logger.Warn().Str("key", recentKey).Msg("discarding undecodable cache entry")
	}

	articles, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(articles); err == nil {
		if err := c.backend.Set(ctx, recentKey, data, c.ttl); err != nil {
			logger.Warn().Err(err).Str("key", recentKey).Msg("cache write failed")
		}
	}
	return articles, nil
}

// Invalidate drops the cached list so the next read refetches it.
func (c *IndexCache) Invalidate(ctx context.Context) error {
	return c.backend.Delete(ctx, recentKey)
}
