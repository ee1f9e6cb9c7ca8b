package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// PublishedCache fronts public reads of published site documents.
// Keys are site slugs; publish invalidates. A nil *PublishedCache is
// valid and disables caching, so callers never branch on it.
type PublishedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr, password string, ttl time.Duration) *PublishedCache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[Cache] redis unavailable at %s, caching disabled: %v", addr, err)
		return nil
	}
	return &PublishedCache{rdb: rdb, ttl: ttl}
}

func key(slug string) string { return "published:" + slug }

func (c *PublishedCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, key(slug)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *PublishedCache) Set(ctx context.Context, slug string, doc []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key(slug), doc, c.ttl).Err(); err != nil {
		log.Printf("[Cache] set %s: %v", slug, err)
	}
}

func (c *PublishedCache) Invalidate(ctx context.Context, slug string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, key(slug)).Err(); err != nil {
		log.Printf("[Cache] invalidate %s: %v", slug, err)
	}
}

func (c *PublishedCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
