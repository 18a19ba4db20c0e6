/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/logging"
)

// globalFlags returns the flags shared by every subcommand. Flag values
// carry state, so each command tree needs its own set.
func globalFlags() []cli.Flag {
	defaults := config.Default()

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Sources: cli.EnvVars("LABX_CONFIG"),
			Usage:   "YAML configuration file; flags and env vars override it",
		},
		&cli.StringFlag{
			Name:    "api-url",
			Value:   defaults.APIURL,
			Sources: cli.EnvVars("LABX_API_URL"),
			Usage:   "base URL of the OpenAI-compatible API",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Sources: cli.EnvVars("LABX_API_KEY"),
			Usage:   "API key sent as a bearer token",
		},
		&cli.StringFlag{
			Name:    "vision-model",
			Value:   defaults.VisionModel,
			Sources: cli.EnvVars("LABX_VISION_MODEL"),
			Usage:   "model used to read report images",
		},
		&cli.StringFlag{
			Name:    "text-model",
			Value:   defaults.TextModel,
			Sources: cli.EnvVars("LABX_TEXT_MODEL"),
			Usage:   "model used for JSON repair and summaries",
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Value:   defaults.Concurrency,
			Sources: cli.EnvVars("LABX_CONCURRENCY"),
			Usage:   "maximum concurrent extraction calls",
		},
		&cli.DurationFlag{
			Name:    "request-timeout",
			Value:   defaults.RequestTimeout,
			Sources: cli.EnvVars("LABX_REQUEST_TIMEOUT"),
			Usage:   "timeout of a single API call",
		},
		&cli.IntFlag{
			Name:    "max-retries",
			Value:   defaults.MaxRetries,
			Sources: cli.EnvVars("LABX_MAX_RETRIES"),
			Usage:   "attempts per API call",
		},
		&cli.FloatFlag{
			Name:    "requests-per-second",
			Sources: cli.EnvVars("LABX_REQUESTS_PER_SECOND"),
			Usage:   "API request rate limit (0 disables it)",
		},
		&cli.IntFlag{
			Name:    "max-images",
			Value:   defaults.MaxImages,
			Sources: cli.EnvVars("LABX_MAX_IMAGES"),
			Usage:   "maximum images per batch",
		},
		&cli.FloatFlag{
			Name:    "max-image-mb",
			Value:   defaults.MaxImageMB,
			Sources: cli.EnvVars("LABX_MAX_IMAGE_MB"),
			Usage:   "maximum size of a single image in MB",
		},
		&cli.BoolFlag{
			Name:    "summary",
			Value:   defaults.EnableSummary,
			Sources: cli.EnvVars("LABX_ENABLE_SUMMARY"),
			Usage:   "enable clinical summaries",
		},
		&cli.BoolFlag{
			Name:    "cache",
			Sources: cli.EnvVars("LABX_CACHE_ENABLED"),
			Usage:   "cache extracted reports by image hash",
		},
		&cli.StringFlag{
			Name:    "cache-backend",
			Value:   defaults.CacheBackend,
			Sources: cli.EnvVars("LABX_CACHE_BACKEND"),
			Usage:   "cache backend (disk or redis)",
		},
		&cli.StringFlag{
			Name:    "cache-dir",
			Value:   defaults.CacheDir,
			Sources: cli.EnvVars("LABX_CACHE_DIR"),
			Usage:   "directory of the disk cache",
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Value:   defaults.RedisURL,
			Sources: cli.EnvVars("LABX_REDIS_URL"),
			Usage:   "Redis URL of the redis cache backend",
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Sources: cli.EnvVars("LABX_CACHE_TTL"),
			Usage:   "expiry of redis cache entries (0 keeps them)",
		},
		&cli.BoolFlag{
			Name:    "artifacts",
			Sources: cli.EnvVars("LABX_ARTIFACTS_ENABLED"),
			Usage:   "save raw model responses and reports",
		},
		&cli.StringFlag{
			Name:    "artifacts-dir",
			Value:   defaults.ArtifactsDir,
			Sources: cli.EnvVars("LABX_ARTIFACTS_DIR"),
			Usage:   "directory of saved artifacts",
		},
		&cli.BoolFlag{
			Name:    "phi-logging",
			Sources: cli.EnvVars("LABX_PHI_LOGGING"),
			Usage:   "include patient identifiers in logs",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Sources: cli.EnvVars("LABX_LOG_LEVEL"),
			Usage:   "log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   logging.FormatLogfmt,
			Sources: cli.EnvVars("LABX_LOG_FORMAT"),
			Usage:   "log format (text, logfmt, json)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "shorthand for --log-level debug",
		},
	}
}

// setupLogging applies the logging flags before any command runs.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := cmd.String("log-level")
	if cmd.Bool("verbose") {
		level = "debug"
	}

	if err := logging.SetLevel(level); err != nil {
		return ctx, err
	}
	if err := logging.SetFormat(cmd.String("log-format")); err != nil {
		return ctx, err
	}

	return ctx, nil
}

// loadConfig builds the configuration from defaults, the optional YAML file
// and any flag or env var that was explicitly set, in that order.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.Default()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.LoadFile(path, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyFlags(cmd *cli.Command, cfg *config.Config) {
	setString(cmd, "api-url", &cfg.APIURL)
	setString(cmd, "api-key", &cfg.APIKey)
	setString(cmd, "vision-model", &cfg.VisionModel)
	setString(cmd, "text-model", &cfg.TextModel)
	setString(cmd, "cache-backend", &cfg.CacheBackend)
	setString(cmd, "cache-dir", &cfg.CacheDir)
	setString(cmd, "redis-url", &cfg.RedisURL)
	setString(cmd, "artifacts-dir", &cfg.ArtifactsDir)

	if cmd.IsSet("concurrency") {
		cfg.Concurrency = cmd.Int("concurrency")
	}
	if cmd.IsSet("max-retries") {
		cfg.MaxRetries = cmd.Int("max-retries")
	}
	if cmd.IsSet("max-images") {
		cfg.MaxImages = cmd.Int("max-images")
	}
	if cmd.IsSet("request-timeout") {
		cfg.RequestTimeout = cmd.Duration("request-timeout")
	}
	if cmd.IsSet("cache-ttl") {
		cfg.CacheTTL = cmd.Duration("cache-ttl")
	}
	if cmd.IsSet("requests-per-second") {
		cfg.RequestsPerSecond = cmd.Float("requests-per-second")
	}
	if cmd.IsSet("max-image-mb") {
		cfg.MaxImageMB = cmd.Float("max-image-mb")
	}

	setBool(cmd, "summary", &cfg.EnableSummary)
	setBool(cmd, "cache", &cfg.CacheEnabled)
	setBool(cmd, "artifacts", &cfg.ArtifactsEnabled)
	setBool(cmd, "phi-logging", &cfg.PHILogging)
}

func setString(cmd *cli.Command, name string, dst *string) {
	if cmd.IsSet(name) {
		*dst = cmd.String(name)
	}
}

func setBool(cmd *cli.Command, name string, dst *bool) {
	if cmd.IsSet(name) {
		*dst = cmd.Bool(name)
	}
}
