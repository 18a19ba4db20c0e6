/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/lab"
	"github.com/humaidq/labx/pipeline"
	"github.com/humaidq/labx/provider"
	"github.com/humaidq/labx/store"
)

const cachePingTimeout = 3 * time.Second

// runtime holds the pipeline and the resources it owns.
type runtime struct {
	pipeline *pipeline.Pipeline
	cache    store.Cache
}

func (r *runtime) Close() error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Close()
}

type pinger interface {
	Ping(ctx context.Context) error
}

// buildRuntime wires the provider, optional artifact store and optional
// cache into a pipeline.
func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	client := provider.NewClient(cfg)

	var (
		recorder  provider.ResponseRecorder
		artifacts *store.ArtifactStore
	)
	if cfg.ArtifactsEnabled {
		s, err := store.NewArtifactStore(cfg.ArtifactsDir)
		if err != nil {
			return nil, err
		}
		artifacts = s
		recorder = s
		appLogger.Info("Saving artifacts", "dir", cfg.ArtifactsDir)
	}

	vision := provider.NewVision(client, cfg, recorder)

	extract := pipeline.Extractor(vision.Extract)
	if artifacts != nil {
		extract = saveReports(extract, artifacts)
	}

	rt := &runtime{}
	opts := []pipeline.Option{}

	if cfg.EnableSummary {
		opts = append(opts, pipeline.WithSummarizer(provider.NewSummarizer(client, cfg).Summarize))
	}

	if cfg.CacheEnabled {
		cache, err := store.OpenCache(cfg)
		if err != nil {
			return nil, err
		}

		if p, ok := cache.(pinger); ok {
			pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
			if err := p.Ping(pingCtx); err != nil {
				appLogger.Warn("Cache unreachable, lookups will miss", "backend", cfg.CacheBackend, "error", err)
			}
			cancel()
		}

		rt.cache = cache
		opts = append(opts, pipeline.WithCache(cache))
		appLogger.Debug("Report cache enabled", "backend", cfg.CacheBackend)
	}

	p, err := pipeline.New(cfg, extract, opts...)
	if err != nil {
		return nil, errors.Join(err, rt.Close())
	}
	rt.pipeline = p

	return rt, nil
}

// saveReports stores every report returned by extract. A failed save is
// logged and does not fail the extraction.
func saveReports(extract pipeline.Extractor, artifacts *store.ArtifactStore) pipeline.Extractor {
	return func(ctx context.Context, img pipeline.Image) (*lab.Report, error) {
		report, err := extract(ctx, img)
		if err != nil {
			return nil, err
		}

		if _, err := artifacts.SaveReport(img.ID, report); err != nil {
			appLogger.Warn("Failed to save report artifact", "file", img.FileName, "error", err)
		}

		return report, nil
	}
}
