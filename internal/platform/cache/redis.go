package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PingTimeout bounds the connectivity check performed by New.
const PingTimeout = 3 * time.Second

// New dials Redis at addr and verifies the connection. The client is closed
// when the ping fails.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("platform/cache: address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  PingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", addr, err)
	}

	return client, nil
}
