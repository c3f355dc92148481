// Package cache provides a Redis-backed cache for search results. The
// term table changes at most a few times a year, so cached answers stay
// valid for the full TTL; a Redis outage only disables caching, it never
// fails a search.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/oxterm/termsearch/internal/search/engine"
	"github.com/oxterm/termsearch/pkg/config"
	pkgredis "github.com/oxterm/termsearch/pkg/redis"
	"github.com/oxterm/termsearch/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "termsearch:"

// ResultCache caches engine results keyed by normalized query text.
type ResultCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *ResultCache {
	return &ResultCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "result-cache"),
	}
}

// Get returns a cached result for the query, if present. Repeated Redis
// failures trip the circuit breaker so a dead cache stops adding latency
// to every request.
func (c *ResultCache) Get(ctx context.Context, query string) (*engine.Result, bool) {
	key := c.buildKey(query)
	var (
		data  string
		found bool
	)
	err := c.breaker.Execute(func() error {
		v, err := c.client.Get(ctx, key)
		if err != nil {
			if pkgredis.IsNilError(err) {
				return nil
			}
			return err
		}
		data = v
		found = true
		return nil
	})
	if err != nil || !found {
		if err != nil {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result engine.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

// Set stores a result with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, query string, result *engine.Result) {
	key := c.buildKey(query)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.cfg.CacheTTL)
	})
	if err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and stores it,
// collapsing concurrent computations for the same key onto one call.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	query string,
	computeFn func() *engine.Result,
) (*engine.Result, bool) {
	if result, ok := c.Get(ctx, query); ok {
		return result, true
	}
	key := c.buildKey(query)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, query); ok {
			return result, nil
		}
		result := computeFn()
		c.Set(ctx, query, result)
		return result, nil
	})
	return val.(*engine.Result), false
}

// Invalidate removes every cached search result.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	pattern := keyPrefix + "*"
	deleted, err := c.client.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResultCache) buildKey(query string) string {
	normalized := normalizeQuery(query)
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// normalizeQuery lowercases and collapses whitespace so equivalent
// spellings share a cache entry, mirroring the parser's normalization.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
