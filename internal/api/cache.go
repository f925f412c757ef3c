package api

import (
	"os"
	"strconv"
	"sync"

	"github.com/smros/smros/internal/assessment"
)

// ResultCache is a thread-safe LRU cache for completed assessments,
// keyed by assessment ID. It keeps archive reads off Postgres for the
// assessments the dashboard polls repeatedly.
type ResultCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*assessment.Result
	order   []string // oldest first
}

// NewResultCache creates a cache with the given maximum number of
// entries. If maxSize <= 0, it defaults to 20.
func NewResultCache(maxSize int) *ResultCache {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &ResultCache{
		maxSize: maxSize,
		entries: make(map[string]*assessment.Result),
	}
}

// NewResultCacheFromEnv creates a cache sized from the
// RESULT_CACHE_SIZE env var.
func NewResultCacheFromEnv() *ResultCache {
	size := 20
	if v := os.Getenv("RESULT_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewResultCache(size)
}

// Get retrieves an assessment from the cache, or nil if not found.
func (c *ResultCache) Get(id string) *assessment.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.entries[id]
	if !ok {
		return nil
	}
	c.moveToEnd(id)
	return res
}

// Put adds an assessment to the cache, evicting the oldest if full.
func (c *ResultCache) Put(id string, res *assessment.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[id]; ok {
		c.entries[id] = res
		c.moveToEnd(id)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[id] = res
	c.order = append(c.order, id)
}

// Clear drops every cached assessment. Called on reset so a cleared
// gate cannot serve stale results.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*assessment.Result)
	c.order = nil
}

func (c *ResultCache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}
