/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/lab"
)

// Summarizer writes clinical summaries with the text model.
type Summarizer struct {
	client *Client
	model  string
}

// NewSummarizer builds a summarizer.
func NewSummarizer(client *Client, cfg config.Config) *Summarizer {
	return &Summarizer{client: client, model: cfg.TextModel}
}

// Summarize asks the text model for a summary of analysis. Raw model
// payloads are never sent.
func (s *Summarizer) Summarize(ctx context.Context, analysis *lab.AnalysisReport) (string, error) {
	payload, err := json.Marshal(analysis.WithoutRawPayloads())
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis: %w", err)
	}

	summary, err := s.client.complete(ctx, chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: summaryPrompt},
			{Role: "user", Content: "Analyze the following lab results:\n\n" + string(payload)},
		},
		Temperature: 0,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summary failed: %w", err)
	}

	summary = strings.TrimSpace(summary)
	logger.Debug("Summary received", "chars", len(summary))

	return summary, nil
}
