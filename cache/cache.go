/*
Package cache provides short-lived caching of parsed feed items.

The job pipeline holds no state between runs, but closely spaced manual
triggers would otherwise refetch every feed; a small TTL cache keyed by feed
URL absorbs that without introducing any cross-run notification memory.
*/
package cache

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rzafh/portfolio-backend/feeds"
)

// CacheItem represents a cached item with expiration
type CacheItem struct {
	Data      []*feeds.Item `json:"data"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// IsExpired checks if the cache item has expired
func (c *CacheItem) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Cache interface defines caching operations
type Cache interface {
	Get(key string) ([]*feeds.Item, bool)
	Set(key string, items []*feeds.Item, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// InMemoryCache implements an in-memory cache with TTL support
type InMemoryCache struct {
	items map[string]*CacheItem
	mutex sync.RWMutex
	ttl   time.Duration
}

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache(defaultTTL time.Duration) *InMemoryCache {
	cache := &InMemoryCache{
		items: make(map[string]*CacheItem),
		ttl:   defaultTTL,
	}

	go cache.startCleanup()

	return cache
}

// Get retrieves items from cache
func (c *InMemoryCache) Get(key string) ([]*feeds.Item, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.items[key]
	if !exists || item.IsExpired() {
		return nil, false
	}

	return item.Data, true
}

// Set stores items in cache
func (c *InMemoryCache) Set(key string, items []*feeds.Item, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &CacheItem{
		Data:      items,
		ExpiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes an item from cache
func (c *InMemoryCache) Delete(key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
	return nil
}

// Clear removes all items from cache
func (c *InMemoryCache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*CacheItem)
	return nil
}

// startCleanup periodically removes expired items
func (c *InMemoryCache) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes expired items
func (c *InMemoryCache) cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, item := range c.items {
		if item.IsExpired() {
			delete(c.items, key)
		}
	}
}

// CacheManager manages feed item caching for the fetcher
type CacheManager struct {
	cache   Cache
	logger  *logrus.Logger
	feedTTL time.Duration
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cache Cache, logger *logrus.Logger, feedTTL time.Duration) *CacheManager {
	return &CacheManager{
		cache:   cache,
		logger:  logger,
		feedTTL: feedTTL,
	}
}

// GetFeedItems returns cached items for a feed URL
func (cm *CacheManager) GetFeedItems(url string) ([]*feeds.Item, bool) {
	return cm.cache.Get("feed:" + url)
}

// SetFeedItems caches the parsed items for a feed URL
func (cm *CacheManager) SetFeedItems(url string, items []*feeds.Item) error {
	return cm.cache.Set("feed:"+url, items, cm.feedTTL)
}

// Invalidate drops the cached items for a feed URL
func (cm *CacheManager) Invalidate(url string) error {
	return cm.cache.Delete("feed:" + url)
}
