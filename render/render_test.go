// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/humaidq/labx/lab"
)

func sampleAnalysis(t *testing.T) *lab.AnalysisReport {
	t.Helper()

	report := func(id string, day int, potassium float64) lab.Report {
		return lab.Report{
			SourceImageID: id,
			Patient:       lab.PatientMeta{MRN: "42"},
			Panels: []lab.Panel{{
				PanelName: "Chemistry",
				Results: []lab.Analyte{
					{
						RawName:      "K",
						RawUnit:      "mmol/L",
						RawRangeText: "3.5-5.1",
						Unit:         "mmol/L",
						Observations: []lab.Observation{{Date: lab.NewDate(2024, time.January, day), Value: potassium}},
					},
					{
						RawName:      "Na",
						RawUnit:      "mmol/L",
						RawRangeText: "136-145",
						Unit:         "mmol/L",
						Observations: []lab.Observation{{Date: lab.NewDate(2024, time.January, day), Value: 140}},
					},
				},
			}},
		}
	}

	reports := lab.PostprocessReports([]lab.Report{report("img-1", 1, 4.0), report("img-2", 2, 7.0)})
	merged := lab.MergeReports(reports)

	trends := make([]lab.Trend, 0, len(merged))
	for _, a := range merged {
		trends = append(trends, lab.ComputeTrend(a))
	}
	sorted := lab.SortTrendsBySeverity(trends)

	return &lab.AnalysisReport{
		Reports:        reports,
		MergedTimeline: merged,
		Trends:         sorted,
		CriticalFlags:  lab.CriticalTrends(sorted),
		Summary:        "* Potassium is critically high.\nRepeat the panel.",
	}
}

func TestReportsSummary(t *testing.T) {
	t.Parallel()

	reports := []lab.Report{
		{Patient: lab.PatientMeta{MRN: "42"}, Panels: []lab.Panel{{Results: make([]lab.Analyte, 3)}}},
		{Panels: []lab.Panel{{Results: make([]lab.Analyte, 1)}, {Results: make([]lab.Analyte, 1)}}},
	}

	want := "  Report 1: 3 analytes across 1 panel(s)\n    Patient MRN: 42\n  Report 2: 2 analytes across 2 panel(s)"
	if got := ReportsSummary(reports); got != want {
		t.Fatalf("unexpected summary:\n%s\nwant:\n%s", got, want)
	}
}

func TestAnalysisSummary(t *testing.T) {
	t.Parallel()

	got := AnalysisSummary(sampleAnalysis(t))

	for _, want := range []string{
		"CRITICAL VALUES:\n  Potassium: 7 (critical_high) [worsening, +75.0%]",
		"ABNORMAL VALUES:",
		"Total: 2 analytes, 2 trends, 1 critical",
		"CLINICAL SUMMARY:\n* Potassium is critically high.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in summary:\n%s", want, got)
		}
	}

	if strings.Contains(got, "Sodium:") {
		t.Fatalf("normal values must not be listed:\n%s", got)
	}
}

func TestAnalysisSummaryCapsAbnormalValues(t *testing.T) {
	t.Parallel()

	a := &lab.AnalysisReport{}
	for i := 0; i < 30; i++ {
		a.Trends = append(a.Trends, lab.Trend{DisplayName: "X", LatestFlag: lab.FlagHigh, Direction: lab.DirectionStable})
	}

	got := AnalysisSummary(a)
	if n := strings.Count(got, "  X: n/a (high)"); n != maxAbnormalListed {
		t.Fatalf("expected %d abnormal lines, got %d", maxAbnormalListed, n)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if buf.String() != "{\n  \"a\": 1\n}\n" {
		t.Fatalf("unexpected JSON %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteJSONFile(path, sampleAnalysis(t)); err != nil {
		t.Fatalf("WriteJSONFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	var decoded lab.AnalysisReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not an analysis: %v", err)
	}
	if len(decoded.CriticalFlags) != 1 {
		t.Fatalf("expected 1 critical flag, got %d", len(decoded.CriticalFlags))
	}

	if err := WriteJSONFile(filepath.Join(t.TempDir(), "missing", "out.json"), 1); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestAnalysisOrg(t *testing.T) {
	t.Parallel()

	got := AnalysisOrg(sampleAnalysis(t))

	for _, want := range []string{
		"#+TITLE: Lab analysis",
		"* Critical values\n| Analyte | Latest |",
		"| Potassium | 7 | mmol/L | 3.5-5.1 | critical_high | worsening | +75.0% |",
		"** Potassium (mmol/L)",
		"| 2024-01-02 | 7 | critical_high | img-2 |",
		"* Summary\n * Potassium is critically high.\nRepeat the panel.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in org output:\n%s", want, got)
		}
	}
}

func TestOrgCellEscapesPipes(t *testing.T) {
	t.Parallel()

	if got := orgCell(" a|b\nc "); got != "a/b c" {
		t.Fatalf("unexpected cell %q", got)
	}
}

func TestOrgToHTMLAnnotatesFlagRows(t *testing.T) {
	t.Parallel()

	content := "| Analyte | Flag |\n|---+---|\n| Potassium | critical_high |\n| Sodium | normal |\n| Note | none |\n"

	got, err := OrgToHTML(content)
	if err != nil {
		t.Fatalf("OrgToHTML failed: %v", err)
	}

	if !strings.Contains(got, `<tr class="flag-critical-high">`) {
		t.Fatalf("expected critical row class:\n%s", got)
	}
	if !strings.Contains(got, `<tr class="flag-normal">`) {
		t.Fatalf("expected normal row class:\n%s", got)
	}
	if strings.Count(got, "class=\"flag-") != 2 {
		t.Fatalf("expected exactly two annotated rows:\n%s", got)
	}
}

func TestFlagClass(t *testing.T) {
	t.Parallel()

	if FlagClass(lab.FlagCriticalLow) != "flag-critical-low" || FlagClass("") != "" {
		t.Fatalf("unexpected flag classes")
	}
}

func TestTrendChart(t *testing.T) {
	t.Parallel()

	a := sampleAnalysis(t)

	got, err := TrendChart(a.Trends[0])
	if err != nil {
		t.Fatalf("TrendChart failed: %v", err)
	}

	for _, want := range []string{"trend_potassium_0", "Ref Low", "Ref High", "Jan 2, 2024"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in chart output", want)
		}
	}

	empty, err := TrendChart(lab.Trend{AnalyteKey: "sodium"})
	if err != nil || empty != "" {
		t.Fatalf("expected empty chart for empty trend, got (%q, %v)", empty, err)
	}
}

func TestTrendChartsLimit(t *testing.T) {
	t.Parallel()

	a := sampleAnalysis(t)

	charts, err := TrendCharts(a, 1)
	if err != nil {
		t.Fatalf("TrendCharts failed: %v", err)
	}
	if len(charts) != 1 || charts[0].Name != "Potassium" || charts[0].Flag != lab.FlagCriticalHigh {
		t.Fatalf("unexpected charts %+v", charts)
	}

	all, err := TrendCharts(a, 0)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected all charts, got (%d, %v)", len(all), err)
	}
}

func TestChartID(t *testing.T) {
	t.Parallel()

	if got := chartID("vitamin_d_25-oh", 3); got != "trend_vitamin_d_25_oh_3" {
		t.Fatalf("unexpected chart id %q", got)
	}
}

func TestAnalysisHTML(t *testing.T) {
	t.Parallel()

	got, err := AnalysisHTML(sampleAnalysis(t))
	if err != nil {
		t.Fatalf("AnalysisHTML failed: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		EChartsScript,
		`<li class="flag-critical-high"><strong>Potassium</strong> 7 mmol/L (critical_high, worsening)</li>`,
		`<tr class="flag-critical-high">`,
		"trend_sodium_1",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in HTML output", want)
		}
	}
}
