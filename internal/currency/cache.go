package currency

import (
	"sync"
	"time"
)

// Cache holds the last fetched rate bundle. It is safe for concurrent use.
type Cache struct {
	mu        sync.RWMutex
	rates     Rates
	fetchedAt time.Time
	ok        bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached bundle and when it was stored. ok is false until
// the first Set.
func (c *Cache) Get() (r Rates, fetchedAt time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rates, c.fetchedAt, c.ok
}

func (c *Cache) Set(r Rates, fetchedAt time.Time) {
	c.mu.Lock()
	c.rates, c.fetchedAt, c.ok = r, fetchedAt, true
	c.mu.Unlock()
}
