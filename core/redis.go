package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"lookout/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// maxCacheValueSize caps a single cached value
const maxCacheValueSize = 10 * 1024 * 1024

// RedisCache is a JSON value cache in Redis, used for field capability lookups
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *zap.SugaredLogger
}

// NewRedisCache creates a new Redis cache instance. All keys are stored under prefix.
func NewRedisCache(addr, password string, db, poolSize int, prefix string, logger *zap.SugaredLogger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})

	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

// Ping tests the Redis connection
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Set stores a value in the cache with expiration
func (rc *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "marshal").Inc()
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if len(data) > maxCacheValueSize {
		rc.logger.Warnw("Cache value exceeds size limit, rejecting", "key", key, "size", len(data), "limit", maxCacheValueSize)
		metrics.CacheErrors.WithLabelValues("redis", "size_limit").Inc()
		return fmt.Errorf("cache value size %d bytes exceeds maximum allowed size %d bytes", len(data), maxCacheValueSize)
	}

	if err := rc.client.Set(ctx, rc.prefix+key, data, expiration).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "set").Inc()
		return fmt.Errorf("set cache value for %s: %w", key, err)
	}
	return nil
}

// Get retrieves a value from the cache. A missing key is not an error.
func (rc *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := rc.client.Get(ctx, rc.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheMisses.WithLabelValues("redis").Inc()
			return false, nil
		}
		metrics.CacheErrors.WithLabelValues("redis", "get").Inc()
		return false, fmt.Errorf("get cache value for %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "unmarshal").Inc()
		return false, fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}

	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true, nil
}

// Delete removes a key from the cache
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, rc.prefix+key).Err()
}

// CacheKeyFieldsPrefix prefixes field capability cache entries
const CacheKeyFieldsPrefix = "fields:"

// GetFieldsCacheKey builds the cache key for the fields of a set of index
// patterns. Pattern order does not matter.
func GetFieldsCacheKey(indexPatterns []string) string {
	patterns := append([]string(nil), indexPatterns...)
	sort.Strings(patterns)
	sum := sha256.Sum256([]byte(strings.Join(patterns, ",")))
	return CacheKeyFieldsPrefix + hex.EncodeToString(sum[:16])
}
