/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/humaidq/labx/lab"
)

const (
	redisKeyPrefix = "labx:report:"
	redisOpTimeout = 5 * time.Second
)

// RedisCache stores extracted reports in Redis, keyed by image hash.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at url. A zero ttl keeps
// entries until they are cleared.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(imageID string) string {
	return redisKeyPrefix + imageID
}

// Get returns the cached report for imageID. Connection errors and corrupt
// entries are reported as a miss.
func (c *RedisCache) Get(imageID string) (*lab.Report, bool) {
	if imageID == "" {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.key(imageID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Cache read failed, ignoring", "image_id", shortID(imageID), "error", err)
		}
		return nil, false
	}

	var report lab.Report
	if err := json.Unmarshal(data, &report); err != nil {
		logger.Warn("Cache entry corrupt, ignoring", "image_id", shortID(imageID), "error", err)
		return nil, false
	}

	logger.Debug("Cache hit", "image_id", shortID(imageID))
	return &report, true
}

// Put stores report under imageID. Failures are logged and otherwise ignored.
func (c *RedisCache) Put(imageID string, report *lab.Report) {
	if imageID == "" {
		logger.Warn("Cache write failed", "error", errImageIDRequired)
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		logger.Warn("Cache write failed", "image_id", shortID(imageID), "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(imageID), data, c.ttl).Err(); err != nil {
		logger.Warn("Cache write failed", "image_id", shortID(imageID), "error", err)
		return
	}

	logger.Debug("Cached report", "image_id", shortID(imageID))
}

func (c *RedisCache) keys(ctx context.Context) ([]string, error) {
	var keys []string

	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return keys, nil
}

// Len returns the number of cached entries.
func (c *RedisCache) Len() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := c.keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Clear removes every cached report and returns how many were removed.
func (c *RedisCache) Clear() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := c.keys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache keys: %w", err)
	}

	logger.Info("Cleared cache", "backend", "redis", "removed", removed)
	return int(removed), nil
}
