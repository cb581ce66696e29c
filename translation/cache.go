package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Cache stores the translated values of a distinct value set, in the order
// of the set.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, values []string)
}

// CacheKey identifies a sorted distinct value set translated to target.
func CacheKey(sorted []string, target string) string {
	h := sha256.New()
	for _, v := range sorted {
		h.Write([]byte(v))
		h.Write([]byte{0x1f})
	}
	return "tr:" + target + ":" + hex.EncodeToString(h.Sum(nil))
}

// MemoryCache is a bounded in-process LRU with per-entry expiry.
type MemoryCache struct {
	lru *expirable.LRU[string, []string]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []string](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]string, bool) {
	return c.lru.Get(key)
}

func (c *MemoryCache) Set(_ context.Context, key string, values []string) {
	c.lru.Add(key, values)
}

func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// RedisCache shares translations between instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]string, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("❌ Redis cache get %s: %v", key, err)
		return nil, false
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		log.Printf("❌ Redis cache decode %s: %v", key, err)
		return nil, false
	}
	return values, true
}

func (c *RedisCache) Set(ctx context.Context, key string, values []string) {
	raw, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Printf("❌ Redis cache set %s: %v", key, err)
	}
}

// TieredCache consults its tiers in order and back-fills the faster tiers
// on a hit further down.
type TieredCache struct {
	tiers []Cache
}

func NewTieredCache(tiers ...Cache) *TieredCache {
	return &TieredCache{tiers: tiers}
}

func (c *TieredCache) Get(ctx context.Context, key string) ([]string, bool) {
	for i, tier := range c.tiers {
		values, ok := tier.Get(ctx, key)
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			c.tiers[j].Set(ctx, key, values)
		}
		return values, true
	}
	return nil, false
}

func (c *TieredCache) Set(ctx context.Context, key string, values []string) {
	for _, tier := range c.tiers {
		tier.Set(ctx, key, values)
	}
}
