package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	goredis "github.com/go-redis/redis/v8"

	"signal-backtest/internal/model"
)

const redisKeyPrefix = "candles:"

// RedisCache keeps candle series in Redis so several API instances share
// fetched data. Values are JSON arrays of candles with a TTL.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisCache(client *goredis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// DialRedis connects to addr and pings it.
func DialRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (model.Series, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var series model.Series
	if err := sonic.Unmarshal(raw, &series); err != nil {
		return nil, false, fmt.Errorf("redis decode: %w", err)
	}
	return series, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, series model.Series) error {
	raw, err := sonic.Marshal(series)
	if err != nil {
		return fmt.Errorf("redis encode: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
