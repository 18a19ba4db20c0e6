/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML files. Pointer fields distinguish
// "absent" from a zero value, so only keys present in the file override.
type fileConfig struct {
	API struct {
		URL               *string        `yaml:"url"`
		Key               *string        `yaml:"key"`
		VisionModel       *string        `yaml:"vision_model"`
		TextModel         *string        `yaml:"text_model"`
		Timeout           *time.Duration `yaml:"timeout"`
		MaxRetries        *int           `yaml:"max_retries"`
		RetryBaseDelay    *time.Duration `yaml:"retry_base_delay"`
		RetryMaxDelay     *time.Duration `yaml:"retry_max_delay"`
		RequestsPerSecond *float64       `yaml:"requests_per_second"`
	} `yaml:"api"`

	Pipeline struct {
		Concurrency   *int     `yaml:"concurrency"`
		MaxImages     *int     `yaml:"max_images"`
		MaxImageMB    *float64 `yaml:"max_image_mb"`
		EnableSummary *bool    `yaml:"enable_summary"`
		PHILogging    *bool    `yaml:"phi_logging"`
	} `yaml:"pipeline"`

	Cache struct {
		Enabled  *bool          `yaml:"enabled"`
		Backend  *string        `yaml:"backend"`
		Dir      *string        `yaml:"dir"`
		RedisURL *string        `yaml:"redis_url"`
		TTL      *time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	Artifacts struct {
		Enabled *bool   `yaml:"enabled"`
		Dir     *string `yaml:"dir"`
	} `yaml:"artifacts"`

	Server struct {
		Host       *string `yaml:"host"`
		Port       *int    `yaml:"port"`
		CSRFSecret *string `yaml:"csrf_secret"`
	} `yaml:"server"`
}

// LoadFile overlays the YAML file at path onto base. Environment variables
// in the file are expanded before parsing.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("%w %s: %w", ErrConfigFileRead, path, err)
	}

	return Parse([]byte(os.ExpandEnv(string(data))), base)
}

// Parse overlays YAML content onto base.
func Parse(data []byte, base Config) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return base, fmt.Errorf("%w: %w", ErrConfigFileParse, err)
	}

	cfg := base
	set(&cfg.APIURL, fc.API.URL)
	set(&cfg.APIKey, fc.API.Key)
	set(&cfg.VisionModel, fc.API.VisionModel)
	set(&cfg.TextModel, fc.API.TextModel)
	set(&cfg.RequestTimeout, fc.API.Timeout)
	set(&cfg.MaxRetries, fc.API.MaxRetries)
	set(&cfg.RetryBaseDelay, fc.API.RetryBaseDelay)
	set(&cfg.RetryMaxDelay, fc.API.RetryMaxDelay)
	set(&cfg.RequestsPerSecond, fc.API.RequestsPerSecond)

	set(&cfg.Concurrency, fc.Pipeline.Concurrency)
	set(&cfg.MaxImages, fc.Pipeline.MaxImages)
	set(&cfg.MaxImageMB, fc.Pipeline.MaxImageMB)
	set(&cfg.EnableSummary, fc.Pipeline.EnableSummary)
	set(&cfg.PHILogging, fc.Pipeline.PHILogging)

	set(&cfg.CacheEnabled, fc.Cache.Enabled)
	set(&cfg.CacheBackend, fc.Cache.Backend)
	set(&cfg.CacheDir, fc.Cache.Dir)
	set(&cfg.RedisURL, fc.Cache.RedisURL)
	set(&cfg.CacheTTL, fc.Cache.TTL)

	set(&cfg.ArtifactsEnabled, fc.Artifacts.Enabled)
	set(&cfg.ArtifactsDir, fc.Artifacts.Dir)

	set(&cfg.Host, fc.Server.Host)
	set(&cfg.Port, fc.Server.Port)
	set(&cfg.CSRFSecret, fc.Server.CSRFSecret)

	return cfg, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
