package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/localnerve/macrosdb/internal/models"
	"github.com/redis/go-redis/v9"
)

// FoodCache is a read-through cache of food rows. Implementations report misses as a nil
// food with a nil error.
type FoodCache interface {
	GetFood(ctx context.Context, id uint64) (*models.Food, error)
	SetFood(ctx context.Context, food *models.Food) error
	DeleteFood(ctx context.Context, id uint64) error
	Ping(ctx context.Context) error
}

type noopCache struct{}

func (noopCache) GetFood(context.Context, uint64) (*models.Food, error) { return nil, nil }
func (noopCache) SetFood(context.Context, *models.Food) error { return nil }
func (noopCache) DeleteFood(context.Context, uint64) error { return nil }
func (noopCache) Ping(context.Context) error { return nil }

// RedisFoodCache stores foods as JSON under macrosdb:food:<id>
type RedisFoodCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisFoodCache connects to the Redis server at redisURL (redis://[:password@]host:port/db)
func NewRedisFoodCache(redisURL string, ttl time.Duration) (*RedisFoodCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return NewRedisFoodCacheWithClient(redis.NewClient(opts), ttl), nil
}

// NewRedisFoodCacheWithClient wraps an existing client
func NewRedisFoodCacheWithClient(client *redis.Client, ttl time.Duration) *RedisFoodCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisFoodCache{client: client, ttl: ttl, prefix: "macrosdb:food:"}
}

func (c *RedisFoodCache) key(id uint64) string {
	return c.prefix + strconv.FormatUint(id, 10)
}

func (c *RedisFoodCache) GetFood(ctx context.Context, id uint64) (*models.Food, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var food models.Food
	if err := json.Unmarshal(raw, &food); err != nil {
		return nil, err
	}
	return &food, nil
}

func (c *RedisFoodCache) SetFood(ctx context.Context, food *models.Food) error {
	raw, err := json.Marshal(food)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(food.ID), raw, c.ttl).Err()
}

func (c *RedisFoodCache) DeleteFood(ctx context.Context, id uint64) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *RedisFoodCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool
func (c *RedisFoodCache) Close() error {
	return c.client.Close()
}
