package llm

import (
	"sync"
	"time"

	"github.com/Veraticus/finpulse/internal/model"
)

// cacheEntry represents a cached classification.
type cacheEntry struct {
	expiry time.Time
	result model.ClassifierResult
}

// resultCache provides thread-safe TTL caching for classifications.
type resultCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// newResultCache creates a cache with the specified TTL.
// A negative TTL disables caching.
func newResultCache(ttl time.Duration) *resultCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	if ttl > 0 {
		go cache.cleanup(min(ttl, 5*time.Minute))
	}

	return cache
}

func (c *resultCache) get(key string) (model.ClassifierResult, bool) {
	if c.ttl < 0 {
		return model.ClassifierResult{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		return model.ClassifierResult{}, false
	}
	return entry.result, true
}

func (c *resultCache) set(key string, result model.ClassifierResult) {
	if c.ttl < 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result: result,
		expiry: c.now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *resultCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *resultCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

func (c *resultCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *resultCache) Close() {
	c.once.Do(func() { close(c.stopCh) })
}
