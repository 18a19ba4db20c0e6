/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/lab"
)

// Extractor turns one image into a report.
type Extractor func(ctx context.Context, img Image) (*lab.Report, error)

// Summarizer writes a narrative summary of an analysis.
type Summarizer func(ctx context.Context, analysis *lab.AnalysisReport) (string, error)

// ReportCache stores extracted reports by image ID.
type ReportCache interface {
	Get(imageID string) (*lab.Report, bool)
	Put(imageID string, report *lab.Report)
}

// Pipeline runs extraction and analysis over batches of images.
type Pipeline struct {
	cfg        config.Config
	extract    Extractor
	summarize  Summarizer
	cache      ReportCache
	phiLogging bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSummarizer sets the summarizer used when summaries are requested.
func WithSummarizer(s Summarizer) Option {
	return func(p *Pipeline) {
		p.summarize = s
	}
}

// WithCache enables the report cache.
func WithCache(c ReportCache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// New builds a pipeline. The extractor is required.
func New(cfg config.Config, extract Extractor, opts ...Option) (*Pipeline, error) {
	if extract == nil {
		return nil, errExtractorRequired
	}

	p := &Pipeline{
		cfg:        cfg,
		extract:    extract,
		phiLogging: cfg.PHILogging,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// CanSummarize reports whether a summarizer is configured.
func (p *Pipeline) CanSummarize() bool {
	return p.summarize != nil
}

// RunExtractOnly loads the files at paths and extracts them.
func (p *Pipeline) RunExtractOnly(ctx context.Context, paths []string) ([]lab.Report, error) {
	images, err := LoadImages(paths, p.cfg.MaxImages, p.cfg.MaxImageMB)
	if err != nil {
		return nil, err
	}

	return p.ExtractOnly(ctx, images)
}

// RunFullPipeline loads the files at paths and analyses them.
func (p *Pipeline) RunFullPipeline(ctx context.Context, paths []string, enableSummary bool) (*lab.AnalysisReport, error) {
	logger.Info("Loading images", "count", len(paths))

	images, err := LoadImages(paths, p.cfg.MaxImages, p.cfg.MaxImageMB)
	if err != nil {
		return nil, err
	}

	return p.Analyse(ctx, images, enableSummary)
}

// ExtractOnly extracts and post-processes images without merging.
func (p *Pipeline) ExtractOnly(ctx context.Context, images []Image) ([]lab.Report, error) {
	reports, err := p.extractAll(ctx, images)
	if err != nil {
		return nil, err
	}

	return lab.PostprocessReports(reports), nil
}

// Analyse runs the full pipeline: extract, post-process, merge, trend, rank
// and optionally summarize.
func (p *Pipeline) Analyse(ctx context.Context, images []Image, enableSummary bool) (*lab.AnalysisReport, error) {
	start := time.Now()

	reports, err := p.extractAll(ctx, images)
	if err != nil {
		return nil, err
	}

	reports = lab.PostprocessReports(reports)
	merged := lab.MergeReports(reports)

	trends := make([]lab.Trend, 0, len(merged))
	for _, a := range merged {
		trends = append(trends, lab.ComputeTrend(a))
	}
	trends = lab.SortTrendsBySeverity(trends)

	analysis := &lab.AnalysisReport{
		Reports:        reports,
		MergedTimeline: merged,
		Trends:         trends,
		CriticalFlags:  lab.CriticalTrends(trends),
	}

	if enableSummary {
		if p.summarize == nil {
			return nil, errSummarizerRequired
		}

		logger.Info("Generating summary")
		summary, err := p.summarize(ctx, analysis.WithoutRawPayloads())
		if err != nil {
			return nil, fmt.Errorf("failed to summarize analysis: %w", err)
		}
		analysis.Summary = summary
	}

	logger.Info("Pipeline complete",
		"analytes", len(merged),
		"trends", len(trends),
		"critical", len(analysis.CriticalFlags),
		"duration", time.Since(start),
	)

	return analysis, nil
}

func (p *Pipeline) extractAll(ctx context.Context, images []Image) ([]lab.Report, error) {
	if err := CheckImageCount(len(images), p.cfg.MaxImages); err != nil {
		return nil, err
	}

	logger.Info("Extracting lab data", "images", len(images), "concurrency", p.cfg.Concurrency)

	reports, err := RunOrdered(ctx, p.cfg.Concurrency, images, p.extractOne)
	if err != nil {
		return nil, err
	}

	logger.Info("Extracted reports", "count", len(reports))
	return reports, nil
}

func (p *Pipeline) extractOne(ctx context.Context, idx int, img Image) (lab.Report, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(img.ID); ok {
			logger.Debug("Using cached extraction", "index", idx, "image_id", shortID(img.ID))
			return *cached, nil
		}
	}

	logger.Debug("Extracting image", "index", idx, "file", img.FileName, "image_id", shortID(img.ID))

	report, err := p.extract(ctx, img)
	if err != nil {
		return lab.Report{}, fmt.Errorf("extraction failed for %s: %w", img.FileName, err)
	}
	if report == nil {
		return lab.Report{}, fmt.Errorf("%w: %s", errNilReport, img.FileName)
	}
	if report.SourceImageID == "" {
		report.SourceImageID = img.ID
	}

	if p.phiLogging {
		logger.Debug("Extracted patient", "image_id", shortID(img.ID), "name", report.Patient.Name, "mrn", report.Patient.MRN)
	}

	if p.cache != nil {
		p.cache.Put(img.ID, report)
	}

	return *report, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
