/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package provider

import (
	_ "embed"
)

//go:embed prompts/vision_extract.md
var visionExtractPrompt string

//go:embed prompts/summary.md
var summaryPrompt string

const (
	visionSystemPrompt = "You are a clinical lab report extraction engine. Output ONLY valid JSON. No markdown, no explanation."
	repairSystemPrompt = "Fix the following broken JSON so it is valid. Output ONLY the corrected JSON."
)

const (
	extractMaxTokens = 4096
	summaryMaxTokens = 2048
)
