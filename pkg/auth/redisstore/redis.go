// Package redisstore provides a Redis-backed auth.TokenStore so several
// processes can share exchanged tokens.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"

	"github.com/usestring/apiscout-mcp/pkg/auth"
)

// DefaultKeyPrefix namespaces token keys.
const DefaultKeyPrefix = "apiscout:tokens:"

// Config for the Redis token store. Defaults can be loaded via envdecode.
type Config struct {
	// RedisAddr like "localhost:6379". ENV: REDIS_ADDR
	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`
	// RedisPassword. ENV: REDIS_PASSWORD
	RedisPassword string `env:"REDIS_PASSWORD"`
	// RedisDB index. ENV: REDIS_DB
	RedisDB int `env:"REDIS_DB,default=0"`
	// KeyPrefix for all keys. ENV: TOKEN_KEY_PREFIX
	KeyPrefix string `env:"TOKEN_KEY_PREFIX,default=apiscout:tokens:"`
}

// ConfigFromEnv populates Config from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decoding redis config: %w", err)
	}
	return cfg, nil
}

// Store implements auth.TokenStore on Redis. Values are JSON-encoded tokens;
// the Redis TTL follows the token's expiry.
type Store struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	cl := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(cl, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(cl *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Store{client: cl, keyPrefix: keyPrefix, now: time.Now}
}

func (s *Store) key(k string) string {
	return s.keyPrefix + k
}

// Get returns nil, nil when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (*auth.CachedToken, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting token %s: %w", key, err)
	}

	var tok auth.CachedToken
	if err := json.Unmarshal(val, &tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", key, err)
	}
	return &tok, nil
}

// Put stores tok. A token that already expired is stored with a one second
// TTL so readers still see the latest exchange.
func (s *Store) Put(ctx context.Context, key string, tok *auth.CachedToken) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token %s: %w", key, err)
	}

	var ttl time.Duration
	if tok.ExpiresAt != nil {
		ttl = max(tok.ExpiresAt.Sub(s.now()), time.Second)
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("setting token %s: %w", key, err)
	}
	return nil
}

// Clear deletes every key under the prefix.
func (s *Store) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scanning tokens: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("deleting tokens: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the Redis client.
func (s *Store) Close() error { return s.client.Close() }

var _ auth.TokenStore = (*Store)(nil)
