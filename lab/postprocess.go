/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package lab

import (
	"github.com/humaidq/labx/logging"
)

var logger = logging.Logger(logging.SourcePipeline)

// PostprocessReport normalizes every analyte of r in place and recomputes
// observation flags. Fields already populated upstream are left alone.
func PostprocessReport(r *Report) {
	for pi := range r.Panels {
		for ai := range r.Panels[pi].Results {
			normalizeAnalyte(&r.Panels[pi].Results[ai])
		}
	}
}

// PostprocessReports post-processes each report and returns the same slice.
func PostprocessReports(reports []Report) []Report {
	for i := range reports {
		PostprocessReport(&reports[i])
	}
	return reports
}

func normalizeAnalyte(a *Analyte) {
	if a.AnalyteKey == "" || a.AnalyteKey == a.RawName {
		a.AnalyteKey = NormalizeAnalyteKey(a.RawName)
	}

	if a.DisplayName == "" {
		a.DisplayName = DisplayName(a.AnalyteKey)
	}

	if a.Unit != "" && a.UnitCanonical == "" {
		a.UnitCanonical = NormalizeUnit(a.Unit)
	}

	if a.RawRangeText != "" && !a.RefRange.IsBounded() {
		a.RefRange = ParseReferenceRange(a.RawRangeText)
	}

	for i := range a.Observations {
		obs := &a.Observations[i]
		obs.FlagComputed = ComputeFlag(obs.Value, a.RefRange, a.AnalyteKey)

		if obs.FlagExtracted != "" && obs.FlagExtracted != obs.FlagComputed {
			logger.Info("Flag discrepancy",
				"analyte", a.AnalyteKey,
				"date", obs.Date.String(),
				"extracted", obs.FlagExtracted,
				"computed", obs.FlagComputed,
				"value", obs.Value,
			)
		}
	}
}
