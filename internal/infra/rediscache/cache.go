package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fastprodman/guildledger/internal/config"
)

// Cache is a byte-valued read-through cache with a fixed TTL. Entries are
// never invalidated explicitly; they expire.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func New(cfg config.RedisConfig) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl:    cfg.TTL,
		prefix: "guildledger:",
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	err := c.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	return nil
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	return b, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
