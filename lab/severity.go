/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package lab

import (
	"cmp"
	"math"
	"slices"
)

// magnitudeCap bounds the pct change contribution to 20 points.
const magnitudeCap = 200.0

var flagWeights = map[Flag]float64{
	FlagCriticalHigh: 100,
	FlagCriticalLow:  100,
	FlagHigh:         50,
	FlagLow:          50,
	FlagNormal:       0,
}

var directionWeights = map[Direction]float64{
	DirectionWorsening:   30,
	DirectionFluctuating: 15,
	DirectionStable:      0,
	DirectionImproving:   -10,
}

// ComputeSeverity scores a trend; higher is more urgent.
func ComputeSeverity(t Trend) float64 {
	flagW := flagWeights[t.LatestFlag]
	dirW := directionWeights[t.Direction]
	magW := math.Min(math.Abs(t.PctChange), magnitudeCap) * 0.1

	return round2(flagW + dirW + magW)
}

// SortTrendsBySeverity overwrites every trend's SeverityScore and returns a
// new slice ordered most urgent first. Equal scores keep input order.
func SortTrendsBySeverity(trends []Trend) []Trend {
	for i := range trends {
		trends[i].SeverityScore = ComputeSeverity(trends[i])
	}

	sorted := slices.Clone(trends)
	slices.SortStableFunc(sorted, func(a, b Trend) int {
		return cmp.Compare(b.SeverityScore, a.SeverityScore)
	})

	return sorted
}
