/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package lab

import (
	"fmt"
	"slices"

	"github.com/elliotchance/orderedmap/v3"
)

func rangeSignature(r ReferenceRange) string {
	lo, hi := "None", "None"
	if r.Low != nil {
		lo = fmt.Sprintf("%.4f", *r.Low)
	}
	if r.High != nil {
		hi = fmt.Sprintf("%.4f", *r.High)
	}
	return lo + "|" + hi
}

// mergeKey groups analytes that share a key, canonical unit and parsed range.
func mergeKey(a Analyte) string {
	return a.AnalyteKey + "|" + a.UnitCanonical + "|" + rangeSignature(a.RefRange)
}

type observationKey struct {
	date  string
	value float64
}

type mergeGroup struct {
	template     Analyte
	observations *orderedmap.OrderedMap[observationKey, Observation]
}

// MergeReports folds the analytes of every report into one timeline per
// merge key. Each observation is tagged in place with its report's
// SourceImageID. Observations sharing a date and value are de-duplicated
// with the later report winning. Analytes are returned in first-seen order.
func MergeReports(reports []Report) []Analyte {
	groups := orderedmap.NewOrderedMap[string, *mergeGroup]()

	for ri := range reports {
		report := &reports[ri]
		for pi := range report.Panels {
			panel := &report.Panels[pi]
			for ai := range panel.Results {
				analyte := &panel.Results[ai]
				key := mergeKey(*analyte)

				g, ok := groups.Get(key)
				if !ok {
					template := *analyte
					template.Observations = nil
					g = &mergeGroup{
						template:     template,
						observations: orderedmap.NewOrderedMap[observationKey, Observation](),
					}
					groups.Set(key, g)
				}

				for oi := range analyte.Observations {
					obs := &analyte.Observations[oi]
					obs.SourceImageID = report.SourceImageID

					// Overwriting keeps the first-seen position
					dk := observationKey{date: obs.Date.String(), value: obs.Value}
					g.observations.Set(dk, *obs)
				}
			}
		}
	}

	merged := make([]Analyte, 0, groups.Len())
	total := 0
	for g := range groups.Values() {
		observations := slices.AppendSeq(make([]Observation, 0, g.observations.Len()), g.observations.Values())
		slices.SortStableFunc(observations, func(a, b Observation) int {
			return a.Date.Compare(b.Date.Time)
		})

		a := g.template
		a.Observations = observations
		merged = append(merged, a)
		total += len(observations)
	}

	logger.Info("Merged reports",
		"reports", len(reports),
		"analytes", len(merged),
		"observations", total,
	)

	return merged
}
