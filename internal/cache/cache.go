// Package cache keeps hot catalog entries in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"storefront/internal/config"
	"storefront/internal/domain"
)

// NewRedisClient builds a client from config. The caller owns Close.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Protocol: 2,
	})
}

// ProductCache stores products as JSON under product:{id}.
type ProductCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *log.Logger
}

func NewProductCache(client redis.Cmdable, ttl time.Duration, logger *log.Logger) *ProductCache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ProductCache{client: client, ttl: ttl, logger: logger}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Get returns the cached product. Misses and redis failures both report false.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, bool) {
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Printf("product cache: get id=%s error=%v", id, err)
		}
		return nil, false
	}
	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Printf("product cache: decode id=%s error=%v", id, err)
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) Set(ctx context.Context, p domain.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.Printf("product cache: encode id=%s error=%v", p.ID, err)
		return
	}
	if err := c.client.Set(ctx, productKey(p.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Printf("product cache: set id=%s error=%v", p.ID, err)
	}
}

func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		c.logger.Printf("product cache: del id=%s error=%v", id, err)
	}
}
