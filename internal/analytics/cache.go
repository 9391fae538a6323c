package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "analytics:version"
	// BumpChannel carries cache version bumps between processes.
	BumpChannel = "analytics.bump"
)

// CacheObserver receives hit and miss notifications per cached section.
type CacheObserver interface {
	ObserveCache(section string, hit bool)
}

// Cache wraps Redis based caching with versioning controls.
type Cache struct {
	client   *redis.Client
	ttl      time.Duration
	observer CacheObserver
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// WithObserver attaches a hit/miss observer and returns the cache.
func (c *Cache) WithObserver(o CacheObserver) *Cache {
	if c != nil {
		c.observer = o
	}
	return c
}

// Enabled reports whether a Redis client backs the cache.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.Enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if !c.Enabled() {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.observe(key, true)
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	c.observe(key, false)
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the cache by incrementing the global version and publishing an event.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation subscribes to version bump notifications until ctx ends.
// The callback, when set, runs after each applied bump.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string, onBump func(version int64)) error {
	if !c.Enabled() {
		return nil
	}
	if channel == "" {
		channel = BumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err == nil {
					_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
				} else if ver, err = c.client.Incr(ctx, cacheVersionKey).Result(); err != nil {
					continue
				}
				if onBump != nil {
					onBump(ver)
				}
			}
		}
	}()
	return nil
}

func (c *Cache) observe(key string, hit bool) {
	if c.observer != nil {
		c.observer.ObserveCache(sectionLabel(key), hit)
	}
}

// sectionLabel reduces a cache key to its section name. KPI keys carry the
// sales target, which never reaches the label.
func sectionLabel(key string) string {
	key = strings.TrimPrefix(key, "analytics:")
	key = strings.TrimPrefix(key, "section:")
	if i := strings.Index(key, ":"); i > 0 {
		key = key[:i]
	}
	return key
}

func keyKPI(target int64) string {
	return strings.Join([]string{"analytics", "kpi", strconv.FormatInt(target, 10)}, ":")
}

func keySection(name string) string {
	return strings.Join([]string{"analytics", "section", name}, ":")
}
