/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package lab

// DefaultCriticalMultiplier is the fraction of the reference span beyond a
// boundary at which a value becomes critical.
const DefaultCriticalMultiplier = 0.50

// criticalMultipliers holds per-analyte overrides of the critical window.
var criticalMultipliers = map[string]float64{
	"potassium":  0.20,
	"glucose":    0.50,
	"calcium":    0.25,
	"magnesium":  0.30,
	"phosphate":  0.30,
	"troponin_i": 0.0, // any elevation is critical
	"troponin_t": 0.0,
	"inr":        0.50,
}

// CriticalMultiplier returns the critical multiplier for an analyte key.
func CriticalMultiplier(analyteKey string) float64 {
	if m, ok := criticalMultipliers[analyteKey]; ok {
		return m
	}
	return DefaultCriticalMultiplier
}

// ComputeFlag classifies value against ref. Bounds are inclusive. A value
// past a boundary by more than span*multiplier is critical. A missing low
// bound counts as zero on the high side; a missing high bound collapses the
// low side span so the boundary itself is the critical threshold.
func ComputeFlag(value float64, ref ReferenceRange, analyteKey string) Flag {
	if !ref.IsBounded() {
		return FlagNormal
	}

	multiplier := CriticalMultiplier(analyteKey)

	if ref.High != nil && value > *ref.High {
		high := *ref.High
		low := 0.0
		if ref.Low != nil {
			low = *ref.Low
		}

		threshold := high
		if span := high - low; span > 0 {
			threshold = high + span*multiplier
		}
		if value > threshold {
			return FlagCriticalHigh
		}
		return FlagHigh
	}

	if ref.Low != nil && value < *ref.Low {
		low := *ref.Low
		// A zero upper bound counts as missing here
		high := low
		if ref.High != nil && *ref.High != 0 {
			high = *ref.High
		}

		threshold := low
		if span := high - low; span > 0 {
			threshold = low - span*multiplier
		}
		if value < threshold {
			return FlagCriticalLow
		}
		return FlagLow
	}

	return FlagNormal
}
