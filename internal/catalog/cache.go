package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "catalog:version"

// Cache wraps a Source with a versioned Redis snapshot per company. Concurrent
// misses for the same company share one load.
type Cache struct {
	source Source
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache. A nil client disables caching.
func NewCache(source Source, client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{source: source, client: client, ttl: ttl}
}

// Products returns the cached catalog, loading it from the source on a miss.
func (c *Cache) Products(ctx context.Context, companyID int64) ([]Product, error) {
	if c.client == nil {
		return c.source.Products(ctx, companyID)
	}
	key, err := c.key(ctx, companyID)
	if err != nil {
		return nil, err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var products []Product
		if err := json.Unmarshal(payload, &products); err != nil {
			return nil, fmt.Errorf("catalog: decode cache: %w", err)
		}
		return products, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("catalog: read cache: %w", err)
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fill(ctx, key, companyID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Product), nil
	}
}

// Catalog loads the company catalog and derives its category universe.
func (c *Cache) Catalog(ctx context.Context, companyID int64) (*Catalog, error) {
	products, err := c.Products(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return Load(products), nil
}

// Warm reloads the company catalog from the source regardless of cache state.
func (c *Cache) Warm(ctx context.Context, companyID int64) (int, error) {
	if c.client == nil {
		return 0, nil
	}
	key, err := c.key(ctx, companyID)
	if err != nil {
		return 0, err
	}
	products, err := c.fill(ctx, key, companyID)
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

// Invalidate drops every cached catalog by bumping the version.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func (c *Cache) fill(ctx context.Context, key string, companyID int64) ([]Product, error) {
	products, err := c.source.Products(ctx, companyID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, fmt.Errorf("catalog: write cache: %w", err)
	}
	return products, nil
}

func (c *Cache) key(ctx context.Context, companyID int64) (string, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", fmt.Errorf("catalog: cache version: %w", err)
	}
	return "catalog:products:" + strconv.FormatInt(companyID, 10) + ":" + strconv.FormatInt(ver, 10), nil
}
