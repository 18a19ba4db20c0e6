// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package lab

import (
	"testing"
	"time"
)

func reportWith(imageID string, analytes ...Analyte) Report {
	return Report{
		SourceImageID: imageID,
		Panels:        []Panel{{PanelName: "General", Results: analytes}},
	}
}

func sodiumOn(day int, value float64) Analyte {
	return Analyte{
		AnalyteKey:    "sodium",
		UnitCanonical: "mmol/L",
		RefRange:      bounded(136, 145),
		Observations:  []Observation{{Date: NewDate(2024, time.January, day), Value: value}},
	}
}

func TestMergeReportsSingleReport(t *testing.T) {
	t.Parallel()

	merged := MergeReports([]Report{reportWith("img1", sodiumOn(1, 140))})
	if len(merged) != 1 {
		t.Fatalf("expected 1 analyte, got %d", len(merged))
	}

	if merged[0].AnalyteKey != "sodium" || len(merged[0].Observations) != 1 {
		t.Fatalf("unexpected merge result %+v", merged[0])
	}

	if merged[0].Observations[0].SourceImageID != "img1" {
		t.Fatalf("expected observation to be tagged, got %q", merged[0].Observations[0].SourceImageID)
	}
}

func TestMergeReportsCombinesTimeline(t *testing.T) {
	t.Parallel()

	merged := MergeReports([]Report{
		reportWith("img1", sodiumOn(3, 143)),
		reportWith("img2", sodiumOn(1, 140)),
	})

	if len(merged) != 1 {
		t.Fatalf("expected 1 analyte, got %d", len(merged))
	}

	obs := merged[0].Observations
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}

	if obs[0].Date.Day() != 1 || obs[1].Date.Day() != 3 {
		t.Fatalf("observations not sorted by date: %v, %v", obs[0].Date, obs[1].Date)
	}
}

func TestMergeReportsLastReportWins(t *testing.T) {
	t.Parallel()

	merged := MergeReports([]Report{
		reportWith("img1", sodiumOn(1, 140)),
		reportWith("img2", sodiumOn(1, 140)),
	})

	if len(merged) != 1 || len(merged[0].Observations) != 1 {
		t.Fatalf("expected one de-duplicated observation, got %+v", merged)
	}

	if got := merged[0].Observations[0].SourceImageID; got != "img2" {
		t.Fatalf("expected later report to win, got %q", got)
	}
}

func TestMergeReportsIsIdempotent(t *testing.T) {
	t.Parallel()

	build := func() []Report {
		return []Report{
			reportWith("img1", sodiumOn(1, 140), sodiumOn(2, 141)),
			reportWith("img2", sodiumOn(2, 141), sodiumOn(3, 139)),
		}
	}

	count := func(analytes []Analyte) int {
		n := 0
		for _, a := range analytes {
			n += len(a.Observations)
		}
		return n
	}

	once := count(MergeReports(build()))
	twice := count(MergeReports(append(build(), build()...)))

	if once != 3 || twice != once {
		t.Fatalf("expected 3 observations both times, got %d and %d", once, twice)
	}
}

func TestMergeReportsSeparatesKeys(t *testing.T) {
	t.Parallel()

	potassium := Analyte{
		AnalyteKey:    "potassium",
		UnitCanonical: "mmol/L",
		RefRange:      bounded(3.5, 5.1),
		Observations:  []Observation{{Date: NewDate(2024, time.January, 1), Value: 4}},
	}

	otherRange := sodiumOn(1, 140)
	otherRange.RefRange = bounded(135, 145)

	otherUnit := sodiumOn(1, 140)
	otherUnit.UnitCanonical = "mEq/L"

	merged := MergeReports([]Report{reportWith("img1", sodiumOn(1, 140), potassium, otherRange, otherUnit)})
	if len(merged) != 4 {
		t.Fatalf("expected 4 analytes, got %d", len(merged))
	}

	if merged[0].AnalyteKey != "sodium" || merged[1].AnalyteKey != "potassium" {
		t.Fatalf("expected first-seen order, got %q then %q", merged[0].AnalyteKey, merged[1].AnalyteKey)
	}
}

func TestMergeReportsEmpty(t *testing.T) {
	t.Parallel()

	if merged := MergeReports(nil); len(merged) != 0 {
		t.Fatalf("expected no analytes, got %d", len(merged))
	}
}

func TestRangeSignature(t *testing.T) {
	t.Parallel()

	if got := rangeSignature(bounded(3.5, 5.1)); got != "3.5000|5.1000" {
		t.Fatalf("unexpected signature %q", got)
	}

	if got := rangeSignature(ReferenceRange{High: float64Ptr(200)}); got != "None|200.0000" {
		t.Fatalf("unexpected signature %q", got)
	}
}
