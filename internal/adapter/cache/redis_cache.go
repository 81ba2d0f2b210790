package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avolkova/fix-exchange/internal/domain"
	"github.com/avolkova/fix-exchange/internal/port"
)

var _ port.Cache = (*RedisCache)(nil)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb, ttl: ttl}
}

func key(symbol string) string { return "book:" + symbol }

func (c *RedisCache) SetBook(ctx context.Context, snapshot *domain.BookSnapshot) error {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(snapshot.Symbol), b, c.ttl).Err()
}

func (c *RedisCache) GetBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error) {
	b, err := c.client.Get(ctx, key(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.BookSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, symbol string) error {
	return c.client.Del(ctx, key(symbol)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
