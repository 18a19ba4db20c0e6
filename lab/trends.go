/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package lab

import (
	"math"
	"slices"
)

// ComputeTrend derives a Trend from the analyte's observations. The analyte
// itself is not modified.
func ComputeTrend(a Analyte) Trend {
	obs := slices.Clone(a.Observations)
	slices.SortStableFunc(obs, func(x, y Observation) int {
		return x.Date.Compare(y.Date.Time)
	})

	t := Trend{
		AnalyteKey:   a.AnalyteKey,
		DisplayName:  a.DisplayName,
		Unit:         a.UnitCanonical,
		RefRange:     a.RefRange,
		Direction:    DirectionStable,
		Observations: obs,
	}
	if t.Unit == "" {
		t.Unit = a.Unit
	}

	if len(obs) == 0 {
		t.Observations = []Observation{}
		return t
	}

	earliest := obs[0]
	latest := obs[len(obs)-1]

	t.PctChange = round2(pctChange(earliest.Value, latest.Value))
	t.LatestValue = float64Ptr(latest.Value)
	t.LatestFlag = latestFlag(latest)
	t.Direction = direction(obs, t.LatestFlag)

	return t
}

func pctChange(first, last float64) float64 {
	if first == 0 {
		if last == 0 {
			return 0
		}
		return 100
	}
	return (last - first) / math.Abs(first) * 100
}

func latestFlag(o Observation) Flag {
	if o.FlagComputed != "" {
		return o.FlagComputed
	}
	if o.FlagExtracted != "" {
		return o.FlagExtracted
	}
	return FlagNormal
}

func deltaSigns(obs []Observation) []int {
	signs := make([]int, 0, len(obs))
	for i := 1; i < len(obs); i++ {
		d := obs[i].Value - obs[i-1].Value
		switch {
		case d > 0:
			signs = append(signs, 1)
		case d < 0:
			signs = append(signs, -1)
		default:
			signs = append(signs, 0)
		}
	}
	return signs
}

// isFluctuating reports two or more reversals among non-zero deltas.
func isFluctuating(obs []Observation) bool {
	if len(obs) < 3 {
		return false
	}

	reversals := 0
	prev := 0
	for _, sign := range deltaSigns(obs) {
		if sign == 0 {
			continue
		}
		if prev != 0 && sign != prev {
			reversals++
		}
		prev = sign
	}

	return reversals >= 2
}

func slopeSign(obs []Observation) int {
	positive, negative := 0, 0
	for _, sign := range deltaSigns(obs) {
		switch sign {
		case 1:
			positive++
		case -1:
			negative++
		}
	}

	switch {
	case positive > negative:
		return 1
	case negative > positive:
		return -1
	default:
		return 0
	}
}

func direction(obs []Observation, flag Flag) Direction {
	if len(obs) < 2 {
		return DirectionStable
	}

	if isFluctuating(obs) {
		return DirectionFluctuating
	}

	slope := slopeSign(obs)

	switch flag {
	case FlagHigh, FlagCriticalHigh:
		if slope < 0 {
			return DirectionImproving
		}
		if slope > 0 {
			return DirectionWorsening
		}
	case FlagLow, FlagCriticalLow:
		if slope > 0 {
			return DirectionImproving
		}
		if slope < 0 {
			return DirectionWorsening
		}
	}

	return DirectionStable
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
