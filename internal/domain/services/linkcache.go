package services

import (
	"sync"

	"phishguard-lab/internal/domain/models"
)

// linkCache memoizes link hover assessments per URL. Bounded FIFO: once
// full, the oldest entry is evicted. The original kept an unbounded map
// for the lifetime of the page view; the bound keeps long sessions from
// growing without limit.
type linkCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*models.RiskAssessment
	order    []string
}

func newLinkCache(capacity int) *linkCache {
	if capacity <= 0 {
		capacity = 512
	}
	return &linkCache{
		capacity: capacity,
		entries:  make(map[string]*models.RiskAssessment, capacity),
	}
}

func (c *linkCache) get(url string) (*models.RiskAssessment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[url]
	return a, ok
}

func (c *linkCache) put(url string, a *models.RiskAssessment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; ok {
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[url] = a
	c.order = append(c.order, url)
}

func (c *linkCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
