/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package config

import "errors"

var (
	ErrAPIURLRequired         = errors.New("api-url is required (set via --api-url or LABX_API_URL env var)")
	ErrInvalidAPIURL          = errors.New("api-url must be an absolute URL")
	ErrVisionModelRequired    = errors.New("vision-model is required")
	ErrTextModelRequired      = errors.New("text-model is required when summaries are enabled")
	ErrConcurrencyOutOfRange  = errors.New("concurrency must be at least 1")
	ErrMaxRetriesOutOfRange   = errors.New("max-retries must be at least 1")
	ErrMaxImagesOutOfRange    = errors.New("max-images must be at least 1")
	ErrMaxImageSizeOutOfRange = errors.New("max-image-mb must be positive")
	ErrTimeoutOutOfRange      = errors.New("request-timeout must be positive")
	ErrCacheDirRequired       = errors.New("cache-dir is required when the cache is enabled")
	ErrArtifactsDirRequired   = errors.New("artifacts-dir is required when artifacts are enabled")
	ErrPortOutOfRange         = errors.New("port must be between 1 and 65535")
	ErrRateOutOfRange         = errors.New("requests-per-second must not be negative")
	ErrUnknownCacheBackend    = errors.New("cache-backend must be one of: disk, redis")
	ErrRedisURLRequired       = errors.New("redis-url is required when the redis cache is enabled")
	ErrCacheTTLOutOfRange     = errors.New("cache-ttl must not be negative")
	ErrConfigFileRead         = errors.New("failed to read config file")
	ErrConfigFileParse        = errors.New("failed to parse config file")
)
