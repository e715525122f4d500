package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/kisancoop/dairyops/pkg/config"
)

// Cache is the short-TTL key-value layer for menu trees, badges and hot
// lookups. Best effort: a miss or a redis failure falls through to the store.
type Cache struct {
	client *redis.Client
	l      *zap.SugaredLogger
}

func New(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		l.Warnw("redis ping failed, cache degraded to pass-through", "err", err)
	} else {
		l.Infow("connected to redis", "addr", cfg.Redis.Addr)
	}
	return &Cache{client: client, l: l}, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// DeleteByPattern removes all keys matching the glob pattern. Used for
// invalidation fanout when menu definitions or grants change.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.Delete(ctx, keys...)
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// GetOrSet returns the cached value for key, or computes it with fn and
// caches the result. Cache write failures are logged, never surfaced.
func GetOrSet[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var result T

	if err := c.Get(ctx, key, &result); err == nil {
		return result, nil
	}

	result, err := fn()
	if err != nil {
		return result, err
	}

	if err := c.Set(ctx, key, result, ttl); err != nil {
		c.l.Debugw("cache set failed", "key", key, "err", err)
	}
	return result, nil
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerCacheClose),
)

func registerCacheClose(lc fx.Lifecycle, c *Cache) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
}
