/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package store

import (
	"fmt"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/lab"
)

// Cache is a report cache that can also be inspected and cleared.
type Cache interface {
	Get(imageID string) (*lab.Report, bool)
	Put(imageID string, report *lab.Report)
	Len() (int, error)
	Clear() (int, error)
	Close() error
}

// Close is a no-op for the disk cache.
func (c *DiskCache) Close() error {
	return nil
}

// OpenCache opens the cache backend selected by cfg.
func OpenCache(cfg config.Config) (Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendDisk, "":
		return NewDiskCache(cfg.CacheDir)
	case config.CacheBackendRedis:
		return NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownCacheBackend, cfg.CacheBackend)
	}
}
