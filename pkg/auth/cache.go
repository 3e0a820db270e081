package auth

import (
	"context"
	"maps"
	"sync"
	"time"
)

// ExpiryBuffer is how long before ExpiresAt a token is treated as expired.
const ExpiryBuffer = 30 * time.Second

// CachedToken is a token obtained from a token endpoint.
type CachedToken struct {
	Token      string     `json:"token"`
	TokenType  string     `json:"token_type"`
	ExpiresIn  *int       `json:"expires_in,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	ObtainedAt time.Time  `json:"obtained_at"`
}

// Expired reports whether the token should be refreshed at now. Tokens
// without an expiry never expire.
func (t *CachedToken) Expired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return !now.Before(t.ExpiresAt.Add(-ExpiryBuffer))
}

// TokenStore holds at most one token per cache key.
type TokenStore interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key string) (*CachedToken, error)
	Put(ctx context.Context, key string, tok *CachedToken) error
	Clear(ctx context.Context) error
}

// TokenCache is an in-memory TokenStore. Expired entries are not evicted;
// callers check Expired.
type TokenCache struct {
	mu     sync.RWMutex
	tokens map[string]*CachedToken
}

// NewTokenCache creates an empty cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{tokens: make(map[string]*CachedToken)}
}

func (c *TokenCache) Get(_ context.Context, key string) (*CachedToken, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens[key], nil
}

func (c *TokenCache) Put(_ context.Context, key string, tok *CachedToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[key] = tok
	return nil
}

func (c *TokenCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.tokens)
	return nil
}

// Keys returns a snapshot of cached keys.
func (c *TokenCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.tokens))
	for k := range maps.Keys(c.tokens) {
		keys = append(keys, k)
	}
	return keys
}
