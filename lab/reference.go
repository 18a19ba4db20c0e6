/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package lab

import (
	"regexp"
	"strconv"
	"strings"
)

const numberPattern = `([+-]?\d+(?:\.\d+)?)`

var (
	// "3.5 - 5.1", "3.5–5.1", "3.5—5.1", "3.5 to 5.1"
	twoSidedRangeRe = regexp.MustCompile(numberPattern + `\s*(?:[-–—]|to)\s*` + numberPattern)

	// "<= 5.0", "≤5.0", "< 5.0"
	upperOnlyRe = regexp.MustCompile(`[<≤]\s*=?\s*` + numberPattern)

	// ">= 1.0", "≥1.0", "> 1.0"
	lowerOnlyRe = regexp.MustCompile(`[>≥]\s*=?\s*` + numberPattern)

	qualitativeRe = regexp.MustCompile(`(?i)^(negative|non[- ]?reactive|not detected|absent|normal)$`)
)

// ParseReferenceRange turns free-text range strings such as "3.5 - 5.1",
// "<= 5.0" or "Adult: 3.5-5.1; Child: 3.0-4.5" into numeric bounds. Text that
// matches no known pattern yields an unbounded range. RawText always keeps
// the input as given.
func ParseReferenceRange(raw string) ReferenceRange {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ReferenceRange{RawText: raw}
	}

	if qualitativeRe.MatchString(text) {
		return ReferenceRange{RawText: raw}
	}

	// Multi-population ranges keep the first segment, minus its label
	if strings.Contains(text, ";") {
		text = strings.TrimSpace(strings.SplitN(text, ";", 2)[0])
		if _, after, ok := strings.Cut(text, ":"); ok {
			text = strings.TrimSpace(after)
		}
	}

	if m := twoSidedRangeRe.FindStringSubmatch(text); m != nil {
		low, lowErr := strconv.ParseFloat(m[1], 64)
		high, highErr := strconv.ParseFloat(m[2], 64)
		if lowErr == nil && highErr == nil {
			return ReferenceRange{Low: &low, High: &high, RawText: raw}
		}
	}

	if m := upperOnlyRe.FindStringSubmatch(text); m != nil {
		if high, err := strconv.ParseFloat(m[1], 64); err == nil {
			return ReferenceRange{High: &high, RawText: raw}
		}
	}

	if m := lowerOnlyRe.FindStringSubmatch(text); m != nil {
		if low, err := strconv.ParseFloat(m[1], 64); err == nil {
			return ReferenceRange{Low: &low, RawText: raw}
		}
	}

	return ReferenceRange{RawText: raw}
}
