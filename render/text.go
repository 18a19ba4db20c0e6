/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/humaidq/labx/lab"
)

// maxAbnormalListed caps the abnormal section of AnalysisSummary.
const maxAbnormalListed = 20

// ReportsSummary returns one line per extracted report.
func ReportsSummary(reports []lab.Report) string {
	var b strings.Builder

	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  Report %d: %d analytes across %d panel(s)", i+1, r.AnalyteCount(), len(r.Panels))
		if r.Patient.MRN != "" {
			fmt.Fprintf(&b, "\n    Patient MRN: %s", r.Patient.MRN)
		}
	}

	return b.String()
}

// AnalysisSummary returns a plain-text overview: critical values, abnormal
// values, totals and the narrative summary when present.
func AnalysisSummary(a *lab.AnalysisReport) string {
	var lines []string

	if len(a.CriticalFlags) > 0 {
		lines = append(lines, "CRITICAL VALUES:")
		for _, t := range a.CriticalFlags {
			lines = append(lines, trendLine(t))
		}
		lines = append(lines, "")
	}

	var abnormal []lab.Trend
	for _, t := range a.Trends {
		if t.LatestFlag.IsAbnormal() {
			abnormal = append(abnormal, t)
		}
	}
	if len(abnormal) > 0 {
		lines = append(lines, "ABNORMAL VALUES:")
		for _, t := range abnormal[:min(len(abnormal), maxAbnormalListed)] {
			lines = append(lines, trendLine(t))
		}
		lines = append(lines, "")
	}

	lines = append(lines, fmt.Sprintf("Total: %d analytes, %d trends, %d critical",
		len(a.MergedTimeline), len(a.Trends), len(a.CriticalFlags)))

	if a.Summary != "" {
		lines = append(lines, "", "CLINICAL SUMMARY:", a.Summary)
	}

	return strings.Join(lines, "\n")
}

func trendLine(t lab.Trend) string {
	return fmt.Sprintf("  %s: %s (%s) [%s, %+.1f%%]",
		t.DisplayName, formatValue(t.LatestValue), flagLabel(t.LatestFlag), t.Direction, t.PctChange)
}

func formatValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func flagLabel(f lab.Flag) string {
	if f == "" {
		return "?"
	}
	return string(f)
}

func formatRange(r lab.ReferenceRange) string {
	switch {
	case r.Low != nil && r.High != nil:
		return formatValue(r.Low) + "-" + formatValue(r.High)
	case r.High != nil:
		return "<" + formatValue(r.High)
	case r.Low != nil:
		return ">" + formatValue(r.Low)
	default:
		return r.RawText
	}
}
