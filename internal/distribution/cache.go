package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const remainderVersionKey = "distribution:remainder:version"

// RemainderCache holds computed remaining-on-truck figures in redis behind a
// version counter. Writers bump the version instead of deleting keys, so a
// bump invalidates every cached figure at once. Reads tolerate brief
// staleness; the balance only ever shrinks as sales land.
type RemainderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRemainderCache instantiates the cache helper.
func NewRemainderCache(client *redis.Client, ttl time.Duration) *RemainderCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RemainderCache{client: client, ttl: ttl}
}

func (c *RemainderCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, remainderVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, remainderVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *RemainderCache) key(ctx context.Context, orderID int64) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("distribution:remainder:%d:%d", orderID, ver), nil
}

// Get loads a cached figure. The second return reports a hit.
func (c *RemainderCache) Get(ctx context.Context, orderID int64, dest *float64) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	key, err := c.key(ctx, orderID)
	if err != nil {
		return false, err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a computed figure under the current version.
func (c *RemainderCache) Set(ctx context.Context, orderID int64, value float64) error {
	if c == nil || c.client == nil {
		return nil
	}
	key, err := c.key(ctx, orderID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

// Bump invalidates all cached figures by advancing the version.
func (c *RemainderCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, remainderVersionKey).Err()
}
