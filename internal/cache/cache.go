// Package cache provides a cache-aside layer over a fiber.Storage backend.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis/v3"
)

// Entry is a key resolved against a single cache generation. A value
// loaded after a miss must be written back through the Entry returned by
// that miss, so a load that races an invalidation lands in the old
// generation and is never served.
type Entry struct {
	key string
}

// Key is the resolved storage key. It is empty when the generation could not
// be read or the cache stores nothing.
func (e Entry) Key() string {
	return e.key
}

// Cache stores JSON-encoded values under string keys.
type Cache interface {
	// Get unmarshals the cached value into dest and reports whether the key
	// was found. The returned Entry is passed to Set on a miss.
	Get(ctx context.Context, key string, dest any) (Entry, bool, error)
	// Set stores value under e. A zero Entry is a no-op.
	Set(ctx context.Context, e Entry, value any) error
	// Invalidate makes every previously stored key unreachable.
	Invalidate(ctx context.Context) error
}

// StorageCache implements Cache on any fiber.Storage. Keys are namespaced by
// a generation counter so invalidation is a single write.
type StorageCache struct {
	storage fiber.Storage
	prefix  string
	ttl     time.Duration
}

// NewStorageCache wraps s. Entries expire after ttl.
func NewStorageCache(s fiber.Storage, prefix string, ttl time.Duration) *StorageCache {
	return &StorageCache{storage: s, prefix: prefix, ttl: ttl}
}

func (c *StorageCache) generationKey() string {
	return c.prefix + "generation"
}

func (c *StorageCache) generation() (string, error) {
	raw, err := c.storage.Get(c.generationKey())
	if err != nil {
		return "", fmt.Errorf("cache generation error: %w", err)
	}
	if len(raw) == 0 {
		return "0", nil
	}
	return string(raw), nil
}

func (c *StorageCache) fullKey(key string) (string, error) {
	gen, err := c.generation()
	if err != nil {
		return "", err
	}
	return c.prefix + gen + ":" + key, nil
}

// Get retrieves a value from the cache.
func (c *StorageCache) Get(ctx context.Context, key string, dest any) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	fullKey, err := c.fullKey(key)
	if err != nil {
		return Entry{}, false, err
	}
	entry := Entry{key: fullKey}

	data, err := c.storage.Get(fullKey)
	if err != nil {
		return entry, false, fmt.Errorf("cache get error: %w", err)
	}
	// nil or empty means a miss
	if len(data) == 0 {
		return entry, false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return entry, false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return entry, true, nil
}

// Set stores a value with the configured TTL in the generation e was
// resolved in.
func (c *StorageCache) Set(ctx context.Context, e Entry, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.key == "" {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.storage.Set(e.key, data, c.ttl); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Invalidate moves the cache to a fresh generation. Stale entries age out
// through their TTL.
func (c *StorageCache) Invalidate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)
	if err := c.storage.Set(c.generationKey(), []byte(gen), 0); err != nil {
		return fmt.Errorf("cache invalidate error: %w", err)
	}
	return nil
}

// Nop is a Cache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (Entry, bool, error) { return Entry{}, false, nil }
func (Nop) Set(context.Context, Entry, any) error                 { return nil }
func (Nop) Invalidate(context.Context) error                      { return nil }

// RedisConfig describes the Redis server backing the cache and limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisStorage connects to Redis. redis.New panics when the server is
// unreachable, so reachability is checked first and the panic converted to
// an error.
func NewRedisStorage(cfg RedisConfig) (storage *redis.Storage, err error) {
	host, portStr, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address %q: %w", cfg.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis port %q: %w", portStr, err)
	}

	conn, err := net.DialTimeout("tcp", cfg.Addr, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("redis not reachable at %s: %w", cfg.Addr, err)
	}
	conn.Close()

	defer func() {
		if r := recover(); r != nil {
			storage, err = nil, fmt.Errorf("failed to connect to redis at %s: %v", cfg.Addr, r)
		}
	}()

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 50
	}
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: cfg.Password,
		Database: cfg.DB,
		PoolSize: poolSize,
	}), nil
}

// RedisPinger reports Redis liveness for health checks.
type RedisPinger struct {
	Storage *redis.Storage
}

// Ping round-trips a PING command.
func (p RedisPinger) Ping(ctx context.Context) error {
	return p.Storage.Conn().Ping(ctx).Err()
}
