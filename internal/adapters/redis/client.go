package redisad

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewClient opens a client for one logical database. Session and preferences
// live in separate databases, so callers open one client per store.
func NewClient(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

func Ping(ctx context.Context, c *redis.Client) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
