// Package formauto - cache.go provides a small in-process TTL cache for
// extracted form schemas, so analyze, preview and submit within one user
// flow do not re-fetch the posting page.
package formauto

import (
	"sync"
	"time"

	"github.com/remoteboard/remoteboard/internal/autoapply"
)

type cacheEntry struct {
	schema  *autoapply.FormSchema
	expires time.Time
}

type schemaCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newSchemaCache(ttl time.Duration) *schemaCache {
	return &schemaCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get returns the cached schema for a URL if it is still fresh.
func (c *schemaCache) get(url string) (*autoapply.FormSchema, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, url)
		return nil, false
	}
	return entry.schema, true
}

func (c *schemaCache) put(url string, schema *autoapply.FormSchema) {
	if c == nil || c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = cacheEntry{schema: schema, expires: c.now().Add(c.ttl)}
}

// invalidate drops a cached schema, forcing re-extraction on next request.
func (c *schemaCache) invalidate(url string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}
