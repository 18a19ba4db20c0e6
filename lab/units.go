/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package lab

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// unitAliases maps a whitespace-free, lowercased unit spelling to its
// canonical form.
var unitAliases = map[string]string{
	// Volume
	"ml": "mL",
	"dl": "dL",
	"l":  "L",

	// Concentration
	"mmol/l": "mmol/L",
	"umol/l": "umol/L",
	"µmol/l": "umol/L", // micro sign
	"μmol/l": "umol/L", // greek mu
	"nmol/l": "nmol/L",
	"meq/l":  "mEq/L",
	"mg/dl":  "mg/dL",
	"mg/l":   "mg/L",
	"g/dl":   "g/dL",
	"g/l":    "g/L",
	"ng/ml":  "ng/mL",
	"ng/dl":  "ng/dL",
	"pg/ml":  "pg/mL",
	"ug/ml":  "ug/mL",
	"µg/ml":  "ug/mL",
	"μg/ml":  "ug/mL",
	"ug/l":   "ug/L",
	"µg/l":   "ug/L",
	"iu/l":   "IU/L",
	"u/l":    "U/L",
	"iu/ml":  "IU/mL",

	// Cells
	"x10^9/l":  "x10^9/L",
	"x10^12/l": "x10^12/L",
	"x10e9/l":  "x10^9/L",
	"x10e12/l": "x10^12/L",
	"10^9/l":   "x10^9/L",
	"10^12/l":  "x10^12/L",
	"×10⁹/l":   "x10^9/L",
	"×10¹²/l":  "x10^12/L",
	"thou/ul":  "x10^3/uL",
	"mil/ul":   "x10^6/uL",
	"k/ul":     "x10^3/uL",
	"k/µl":     "x10^3/uL",

	// Percent
	"%":       "%",
	"percent": "%",

	// Time
	"sec":     "s",
	"seconds": "s",
	"s":       "s",

	// Misc
	"fl":    "fL",
	"pg":    "pg",
	"mm/hr": "mm/hr",
	"mm/h":  "mm/hr",
	"ratio": "ratio",
}

type unitPair struct {
	from, to string
}

// unitConversions holds directed multipliers between canonical units. The
// table is curated, not symmetric or complete.
var unitConversions = map[unitPair]float64{
	{"g/dL", "g/L"}:     10.0,
	{"g/L", "g/dL"}:     0.1,
	{"mg/dL", "mg/L"}:   10.0,
	{"mg/L", "mg/dL"}:   0.1,
	{"umol/L", "mg/dL"}: 0.0113, // creatinine-specific approximation
	{"ng/mL", "ug/L"}:   1.0,
	{"ug/L", "ng/mL"}:   1.0,
	{"mEq/L", "mmol/L"}: 1.0, // monovalent ions
	{"mmol/L", "mEq/L"}: 1.0,
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeUnit returns the canonical spelling of a unit. Unknown units are
// returned trimmed with their case preserved.
func NormalizeUnit(raw string) string {
	key := strings.ToLower(stripSpaces(raw))
	if canonical, ok := unitAliases[key]; ok {
		return canonical
	}

	// Full-width letters and compatibility forms from OCR output
	if folded := norm.NFKC.String(key); folded != key {
		if canonical, ok := unitAliases[strings.ToLower(folded)]; ok {
			return canonical
		}
	}

	return strings.TrimSpace(raw)
}

// ConvertValue converts value between two units. The boolean is false when
// no conversion factor is known, which means the unit families are
// incompatible or the conversion is not curated.
func ConvertValue(value float64, fromUnit, toUnit string) (float64, bool) {
	from := NormalizeUnit(fromUnit)
	to := NormalizeUnit(toUnit)
	if from == to {
		return value, true
	}

	factor, ok := unitConversions[unitPair{from, to}]
	if !ok {
		return 0, false
	}

	return value * factor, true
}
