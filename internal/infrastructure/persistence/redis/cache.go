// Package redis caches academic records and directory snapshots in Redis
// and provides a fixed-window rate limiter for the HTTP layer.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// URL, when set, overrides Host, Port, Password and DB.
	// Example: redis://:secret@localhost:6379/0
	URL string

	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int
	MaxRetries   int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a local single-instance configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) options() (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     c.Addr(),
		Password: c.Password,
		DB:       c.DB,
	}
	if c.URL != "" {
		parsed, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
		}
		opts = parsed
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	if c.MinIdleConns > 0 {
		opts.MinIdleConns = c.MinIdleConns
	}
	if c.MaxRetries > 0 {
		opts.MaxRetries = c.MaxRetries
	}
	if c.DialTimeout > 0 {
		opts.DialTimeout = c.DialTimeout
	}
	if c.ReadTimeout > 0 {
		opts.ReadTimeout = c.ReadTimeout
	}
	if c.WriteTimeout > 0 {
		opts.WriteTimeout = c.WriteTimeout
	}
	return opts, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrCacheMiss is returned when the requested key is not in the cache.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheConnection is returned when Redis cannot be reached.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheSerialization is returned when a value cannot be encoded or decoded.
	ErrCacheSerialization = errors.New("cache: serialization failed")

	// ErrCacheInvalidTTL is returned for negative TTLs.
	ErrCacheInvalidTTL = errors.New("cache: invalid TTL")

	// ErrCacheKeyEmpty is returned when an empty key is provided.
	ErrCacheKeyEmpty = errors.New("cache: key cannot be empty")

	// ErrCacheNilValue is returned when attempting to cache a nil value.
	ErrCacheNilValue = errors.New("cache: value cannot be nil")
)

// ══════════════════════════════════════════════════════════════════════════════
// KEYS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// PrefixHistory namespaces per-semester academic records.
	PrefixHistory = "nextedu:history:"

	// PrefixSnapshot namespaces cached directory snapshots.
	PrefixSnapshot = "nextedu:snapshot:"

	// PrefixRateLimit namespaces rate limiter windows.
	PrefixRateLimit = "nextedu:ratelimit:"
)

// HistoryKey is the key of one student's semester record within a
// directory generation.
func HistoryKey(generation, studentID, semesterKey string) string {
	return PrefixHistory + generation + ":" + studentID + ":" + semesterKey
}

// HistoryPattern matches every cached semester of a student in any generation.
func HistoryPattern(studentID string) string {
	return PrefixHistory + "*:" + studentID + ":*"
}

// SnapshotKey is the key of a cached snapshot.
func SnapshotKey(name string) string {
	return PrefixSnapshot + name
}

// RateLimitKey is the key of a rate limiter window.
func RateLimitKey(identifier, action string, window int64) string {
	return fmt.Sprintf("%s%s:%s:%d", PrefixRateLimit, action, identifier, window)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Cache stores JSON values with TTLs.
type Cache struct {
	client *redis.Client
}

// NewCache connects to Redis and pings it.
func NewCache(ctx context.Context, cfg Config) (*Cache, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return &Cache{client: client}, nil
}

// NewCacheFromClient wraps an existing client.
func NewCacheFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Client returns the underlying Redis client.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Set stores value as JSON under key.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrCacheKeyEmpty
	}
	if value == nil {
		return ErrCacheNilValue
	}
	if ttl < 0 {
		return ErrCacheInvalidTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the value under key into dest. Returns ErrCacheMiss if absent.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return ErrCacheKeyEmpty
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return nil
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// TTL returns the remaining TTL for a key.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	if key == "" {
		return 0, ErrCacheKeyEmpty
	}
	return c.client.TTL(ctx, key).Result()
}

// DeleteByPattern deletes all keys matching a pattern in batches of 100.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	if pattern == "" {
		return 0, ErrCacheKeyEmpty
	}

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	deleted := 0
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return deleted, err
		}
		deleted += len(keys)
	}
	return deleted, nil
}

// DBSize returns the number of keys in the current database.
func (c *Cache) DBSize(ctx context.Context) (int64, error) {
	return c.client.DBSize(ctx).Result()
}
