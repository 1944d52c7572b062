// Package cache holds finished analyses in redis so identical complaints
// do not pay for a second model call. The pipeline works without it; a
// nil *Cache disables caching entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "civiclens:analysis:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(url string, ttl time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{client: redis.NewClient(opt), ttl: ttl}, nil
}

// Key derives the cache key for a normalized complaint. The taxonomy
// version is part of the key so a vocabulary change invalidates old
// entries instead of serving stale labels.
func Key(taxonomyVersion, normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return keyPrefix + taxonomyVersion + ":" + hex.EncodeToString(sum[:])
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if c == nil {
		return nil
	}
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
