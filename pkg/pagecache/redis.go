package pagecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/articgrid/articgrid/pkg/catalog"
)

// Redis is a Redis-backed page store for shared long-running deployments.
// Unlike the in-memory store it supports an optional TTL, since a shared
// cache outlives the single-session freshness assumption.
type Redis struct {
	client   *redis.Client
	pageSize int
	ttl      time.Duration
}

// NewRedis creates a Redis-backed page store. The page size is part of
// every key so stores at different sizes never mix. A zero TTL stores
// pages without expiry.
func NewRedis(client *redis.Client, pageSize int, ttl time.Duration) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &Redis{
		client:   client,
		pageSize: pageSize,
		ttl:      ttl,
	}
}

// key generates the deterministic cache key for a page number.
// Format: artic:page:<size>:<n>
func (r *Redis) key(page int) string {
	return fmt.Sprintf("artic:page:%d:%d", r.pageSize, page)
}

// Get returns the cached page for the given number. Redis errors count as
// misses: a cache problem must never fail a fetch.
func (r *Redis) Get(ctx context.Context, page int) (catalog.Page, bool, error) {
	data, err := r.client.Get(ctx, r.key(page)).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return catalog.Page{}, false, nil
		}
		CacheErrors.WithLabelValues("get").Inc()
		return catalog.Page{}, false, fmt.Errorf("redis get: %w", err)
	}

	var p catalog.Page
	if err := json.Unmarshal(data, &p); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return catalog.Page{}, false, fmt.Errorf("invalid cache entry: %w", err)
	}

	CacheHits.WithLabelValues("redis").Inc()
	return p, true, nil
}

// Set stores a page under its number.
func (r *Redis) Set(ctx context.Context, page int, p catalog.Page) error {
	data, err := json.Marshal(p)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal page: %w", err)
	}

	if err := r.client.Set(ctx, r.key(page), data, r.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.WithLabelValues("redis").Inc()
	return nil
}

// Len returns the number of cached pages at this store's page size.
func (r *Redis) Len(ctx context.Context) (int, error) {
	keys, err := r.client.Keys(ctx, fmt.Sprintf("artic:page:%d:*", r.pageSize)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis keys: %w", err)
	}
	return len(keys), nil
}
