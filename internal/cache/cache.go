// Package cache holds recently served article batches so the API can degrade
// to the last good result when every provider fails.
package cache

import (
	"sync"
	"time"

	"newshub/internal/article"
)

type entry struct {
	articles  []article.Article
	source    string
	expiresAt time.Time
}

// Cache is a TTL cache of article batches keyed by category.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
}

func New() *Cache {
	c := &Cache{
		items: make(map[string]entry),
	}

	// Cleanup expired items every hour
	go c.cleanupLoop()

	return c
}

// Set stores a batch for category with the given TTL.
func (c *Cache) Set(category string, articles []article.Article, source string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[category] = entry{
		articles:  articles,
		source:    source,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get returns the cached batch for category if present and not expired.
func (c *Cache) Get(category string) ([]article.Article, string, bool) {
	c.mu.RLock()
	item, exists := c.items[category]
	c.mu.RUnlock()

	if !exists {
		return nil, "", false
	}
	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, category)
		c.mu.Unlock()
		return nil, "", false
	}
	return item.articles, item.source, true
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}
