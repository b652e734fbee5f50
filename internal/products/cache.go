package products

import (
	"context"
	"encoding/json"
	"time"

	"github.com/omarhijazi/souqline-backend/pkg/db/models"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
	"github.com/omarhijazi/souqline-backend/pkg/redis"
)

// Cache is a short-TTL read cache in front of product lookups. It is purely an
// optimization: every miss or redis failure falls through to the database.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewCache builds the product read cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration, logg *logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logg: logg}
}

// Lookup returns the cached product, or nil on a miss.
func (c *Cache) Lookup(ctx context.Context, key string) *models.Product {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, redis.ProductKey(key))
	if err != nil {
		if !redis.IsMiss(err) && c.logg != nil {
			c.logg.Warn(ctx, "product cache read failed")
		}
		return nil
	}
	var product models.Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		return nil
	}
	return &product
}

// Store caches the product under the given key.
func (c *Cache) Store(ctx context.Context, key string, product *models.Product) {
	if c == nil || c.client == nil || product == nil {
		return
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redis.ProductKey(key), string(raw), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "product cache write failed")
	}
}
