/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache backends.
const (
	CacheBackendDisk  = "disk"
	CacheBackendRedis = "redis"
)

// Config holds everything the pipeline, provider, store and web server need.
// It is built once at startup and passed down; nothing reads it from globals.
type Config struct {
	// Vision/text provider (OpenAI-compatible chat completions endpoint)
	APIURL         string
	APIKey         string
	VisionModel    string
	TextModel      string
	RequestTimeout time.Duration

	// Retry policy for provider calls
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Concurrency ceiling for extraction calls, and an optional request
	// rate limit (0 disables it)
	Concurrency       int
	RequestsPerSecond float64

	// Image constraints
	MaxImages  int
	MaxImageMB float64

	// Features
	EnableSummary    bool
	CacheEnabled     bool
	CacheBackend     string
	CacheDir         string
	RedisURL         string
	CacheTTL         time.Duration
	ArtifactsEnabled bool
	ArtifactsDir     string
	PHILogging       bool

	// Server
	Host       string
	Port       int
	CSRFSecret string
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	home := defaultHome()

	return Config{
		APIURL:         "http://localhost:11434",
		VisionModel:    "llama3.2-vision",
		TextModel:      "llama3.2",
		RequestTimeout: 60 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
		RetryMaxDelay:  30 * time.Second,
		Concurrency:    4,
		MaxImages:      10,
		MaxImageMB:     12.0,
		EnableSummary:  true,
		CacheBackend:   CacheBackendDisk,
		CacheDir:       filepath.Join(home, "cache"),
		RedisURL:       "redis://localhost:6379/0",
		ArtifactsDir:   filepath.Join(home, "artifacts"),
		Host:           "0.0.0.0",
		Port:           8000,
	}
}

func defaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil || dir == "" {
		return ".labx"
	}

	return filepath.Join(dir, ".labx")
}

// Validate checks the configuration for values that would make the
// pipeline misbehave rather than fail loudly.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return ErrAPIURLRequired
	}
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAPIURL, c.APIURL)
	}
	if strings.TrimSpace(c.VisionModel) == "" {
		return ErrVisionModelRequired
	}
	if c.EnableSummary && strings.TrimSpace(c.TextModel) == "" {
		return ErrTextModelRequired
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: got %d", ErrConcurrencyOutOfRange, c.Concurrency)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: got %d", ErrMaxRetriesOutOfRange, c.MaxRetries)
	}
	if c.MaxImages < 1 {
		return fmt.Errorf("%w: got %d", ErrMaxImagesOutOfRange, c.MaxImages)
	}
	if c.MaxImageMB <= 0 {
		return fmt.Errorf("%w: got %g", ErrMaxImageSizeOutOfRange, c.MaxImageMB)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: got %s", ErrTimeoutOutOfRange, c.RequestTimeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: got %g", ErrRateOutOfRange, c.RequestsPerSecond)
	}
	if c.CacheEnabled {
		switch c.CacheBackend {
		case CacheBackendDisk, "":
			if strings.TrimSpace(c.CacheDir) == "" {
				return ErrCacheDirRequired
			}
		case CacheBackendRedis:
			if strings.TrimSpace(c.RedisURL) == "" {
				return ErrRedisURLRequired
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownCacheBackend, c.CacheBackend)
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: got %s", ErrCacheTTLOutOfRange, c.CacheTTL)
	}
	if c.ArtifactsEnabled && strings.TrimSpace(c.ArtifactsDir) == "" {
		return ErrArtifactsDirRequired
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrPortOutOfRange, c.Port)
	}

	return nil
}

// MaxImageBytes is the per-image size limit in bytes.
func (c Config) MaxImageBytes() int64 {
	return int64(c.MaxImageMB * 1024 * 1024)
}

// Addr is the listen address of the web server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
