/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/lab"
	"github.com/humaidq/labx/pipeline"
)

// ResponseRecorder keeps raw model output for later auditing.
type ResponseRecorder interface {
	SaveRawResponse(imageID, raw string, meta map[string]any) (string, error)
}

// Vision extracts lab reports from images with a vision model.
type Vision struct {
	client      *Client
	visionModel string
	textModel   string
	recorder    ResponseRecorder
}

// NewVision builds an extractor. recorder may be nil.
func NewVision(client *Client, cfg config.Config, recorder ResponseRecorder) *Vision {
	return &Vision{
		client:      client,
		visionModel: cfg.VisionModel,
		textModel:   cfg.TextModel,
		recorder:    recorder,
	}
}

// Extract sends img to the vision model and decodes the returned report.
// Malformed JSON gets one repair pass through the text model.
func (v *Vision) Extract(ctx context.Context, img pipeline.Image) (*lab.Report, error) {
	raw, err := v.client.complete(ctx, chatRequest{
		Model: v.visionModel,
		Messages: []chatMessage{
			{Role: "system", Content: visionSystemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "image_url", ImageURL: &imageURL{URL: img.DataURL()}},
				{Type: "text", Text: visionExtractPrompt},
			}},
		},
		Temperature: 0,
		MaxTokens:   extractMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("vision extraction failed for %s: %w", img.FileName, err)
	}

	logger.Debug("Vision response received", "image_id", shortID(img.ID), "chars", len(raw))
	v.record(img, raw)

	data, err := extractJSON(raw)
	if err != nil {
		logger.Warn("JSON parse failed, attempting repair pass", "image_id", shortID(img.ID), "error", err)

		data, err = v.repair(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("vision extraction failed for %s: %w", img.FileName, err)
		}
	}

	var report lab.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("model response for %s is not a lab report: %w", img.FileName, err)
	}

	report.SourceImageID = img.ID
	report.RawJSON = json.RawMessage(data)

	return &report, nil
}

func (v *Vision) repair(ctx context.Context, broken string) ([]byte, error) {
	fixed, err := v.client.complete(ctx, chatRequest{
		Model: v.textModel,
		Messages: []chatMessage{
			{Role: "system", Content: repairSystemPrompt},
			{Role: "user", Content: broken},
		},
		Temperature: 0,
		MaxTokens:   extractMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("repair pass failed: %w", err)
	}

	data, err := extractJSON(fixed)
	if err != nil {
		return nil, fmt.Errorf("repair pass failed: %w", err)
	}

	return data, nil
}

func (v *Vision) record(img pipeline.Image, raw string) {
	if v.recorder == nil {
		return
	}

	meta := map[string]any{
		"model":      v.visionModel,
		"media_type": img.MediaType,
		"file_name":  img.FileName,
	}

	path, err := v.recorder.SaveRawResponse(img.ID, raw, meta)
	if err != nil {
		logger.Warn("Failed to save raw response", "image_id", shortID(img.ID), "error", err)
		return
	}

	logger.Debug("Saved raw response", "path", path)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
