/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

var fenceMarkers = []string{"```json", "```"}

// extractJSON returns the first JSON object in a model response. The object
// may be the whole response or sit inside a markdown code fence.
func extractJSON(text string) ([]byte, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") {
		return validJSON(text)
	}

	for _, marker := range fenceMarkers {
		start := strings.Index(text, marker)
		if start < 0 {
			continue
		}
		start += len(marker)

		end := strings.Index(text[start:], "```")
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated code fence", ErrNoJSON)
		}

		return validJSON(strings.TrimSpace(text[start : start+end]))
	}

	return nil, ErrNoJSON
}

func validJSON(s string) ([]byte, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON in model response: %w", err)
	}
	return []byte(s), nil
}
