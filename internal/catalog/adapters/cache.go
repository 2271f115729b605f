package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pooja-supplies/internal/catalog/domain"
)

// RedisProductCache caches products as JSON under "product:<id>"
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProductCache creates a product cache with the given entry TTL
func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Get returns a cached product, or nil on a miss
func (c *RedisProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		// Unreadable entries are treated as a miss and overwritten.
		return nil, nil
	}
	return &product, nil
}

// Set stores a product for the cache TTL
func (c *RedisProductCache) Set(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err()
}

// Invalidate drops a cached product
func (c *RedisProductCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, productKey(id)).Err()
}
