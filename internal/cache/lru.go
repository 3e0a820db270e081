// Package cache keeps recent endpoint analyses for the MCP server.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/usestring/apiscout-mcp/pkg/scout"
)

// ResultCache provides thread-safe LRU caching of analysis results keyed by
// endpoint key.
type ResultCache struct {
	cache *lru.Cache[string, *scout.Result]
}

// NewResultCache creates a new LRU cache with the specified maximum number of items.
func NewResultCache(maxItems int) (*ResultCache, error) {
	c, err := lru.New[string, *scout.Result](maxItems)
	if err != nil {
		return nil, err
	}
	return &ResultCache{cache: c}, nil
}

// Get retrieves the latest analysis of an endpoint.
func (c *ResultCache) Get(endpointKey string) (*scout.Result, bool) {
	return c.cache.Get(endpointKey)
}

// Put stores an analysis, replacing any previous one for the endpoint.
func (c *ResultCache) Put(res *scout.Result) {
	c.cache.Add(res.EndpointKey, res)
}

// Invalidate drops the analysis of an endpoint.
func (c *ResultCache) Invalidate(endpointKey string) {
	c.cache.Remove(endpointKey)
}

// Purge drops every analysis, e.g. after the endpoints file changed.
func (c *ResultCache) Purge() {
	c.cache.Purge()
}

// Keys returns cached endpoint keys from oldest to newest.
func (c *ResultCache) Keys() []string {
	return c.cache.Keys()
}

// Len returns the current number of items in the cache.
func (c *ResultCache) Len() int {
	return c.cache.Len()
}
