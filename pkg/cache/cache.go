// Package cache provides a Redis-backed response cache used by the search
// API. Caching is optional: a nil client disables it without branching at
// call sites.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tastetrail/tastetrail/pkg/logging"
)

// ErrMiss indicates the key was not in the cache.
var ErrMiss = errors.New("cache miss")

// Config holds cache settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache wraps a Redis client for JSON value caching with a fixed TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    logging.Logger
}

// New creates a cache. An empty Addr returns a disabled cache whose Get
// always misses and whose Set is a no-op.
func New(cfg Config, log logging.Logger) *Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Addr == "" {
		return &Cache{ttl: cfg.TTL, log: log}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{client: client, ttl: cfg.TTL, log: log}
}

// Enabled reports whether a Redis backend is configured.
func (c *Cache) Enabled() bool {
	return c.client != nil
}

// Key builds a stable cache key from a namespace and request parameters.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("tastetrail:%s:%s", namespace, hex.EncodeToString(h.Sum(nil))[:16])
}

// Get unmarshals the cached JSON value into dst, or returns ErrMiss.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		// Treat transport errors as misses so Redis outages degrade to
		// uncached reads instead of failing requests.
		c.log.Warn("cache read failed", logging.F("key", key), logging.Err(err))
		return ErrMiss
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrMiss
	}
	return nil
}

// Set stores the value as JSON under the configured TTL. Failures are
// logged, never surfaced.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache marshal failed", logging.F("key", key), logging.Err(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", logging.F("key", key), logging.Err(err))
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
