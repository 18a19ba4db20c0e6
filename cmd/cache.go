/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/store"
)

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Report cache commands",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the number of cached reports",
				Action: cacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached report",
				Action: cacheClear,
			},
		},
	}
}

func openCache(cmd *cli.Command) (store.Cache, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}

	cache, err := store.OpenCache(cfg)
	if err != nil {
		return nil, cfg, err
	}

	return cache, cfg, nil
}

func cacheStats(ctx context.Context, cmd *cli.Command) error {
	cache, cfg, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = cache.Close()
	}()

	n, err := cache.Len()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Backend: %s\n", cacheLocation(cfg))
	fmt.Fprintf(cmd.Root().Writer, "Cached reports: %d\n", n)

	return nil
}

func cacheClear(ctx context.Context, cmd *cli.Command) error {
	cache, cfg, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = cache.Close()
	}()

	n, err := cache.Clear()
	if err != nil {
		return err
	}

	appLogger.Info("Cache cleared", "backend", cfg.CacheBackend, "removed", n)
	fmt.Fprintf(cmd.Root().Writer, "Removed %d cached report(s) from %s\n", n, cacheLocation(cfg))

	return nil
}

func cacheLocation(cfg config.Config) string {
	if cfg.CacheBackend == config.CacheBackendRedis {
		if u, err := url.Parse(cfg.RedisURL); err == nil {
			return "redis " + u.Redacted()
		}
		return "redis"
	}
	return "disk " + cfg.CacheDir
}
