package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the shared Redis-backed state used across server replicas.
// Implementations must be safe for concurrent use.
type Cache interface {
	Ping(ctx context.Context) error
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
	PublishInvalidation(ctx context.Context, slug string) error
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// PublishInvalidation tells every replica to drop slug from its tenant cache.
// An empty slug means drop everything.
func (c *RedisCache) PublishInvalidation(ctx context.Context, slug string) error {
	return c.client.Publish(ctx, InvalidationChannel, encodeInvalidation(slug)).Err()
}

// SubscribeInvalidations calls fn for every invalidation published by any
// replica until ctx is cancelled. fn receives "" for a full clear.
func (c *RedisCache) SubscribeInvalidations(ctx context.Context, fn func(slug string)) error {
	sub := c.client.Subscribe(ctx, InvalidationChannel)
	defer sub.Close()

	// Wait for the subscription to be confirmed so no message is missed.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("invalidation channel closed")
			}
			slug, valid := decodeInvalidation(msg.Payload)
			if !valid {
				slog.Warn("ignoring malformed invalidation message", "payload", msg.Payload)
				continue
			}
			fn(slug)
		}
	}
}
