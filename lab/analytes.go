/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package lab

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// analyteAliases maps cleaned, lowercased test names and abbreviations to
// canonical analyte keys.
var analyteAliases = map[string]string{
	// Electrolytes
	"na":          "sodium",
	"na+":         "sodium",
	"sod":         "sodium",
	"sod.":        "sodium",
	"sodium":      "sodium",
	"k":           "potassium",
	"k+":          "potassium",
	"pot":         "potassium",
	"potassium":   "potassium",
	"cl":          "chloride",
	"cl-":         "chloride",
	"chloride":    "chloride",
	"co2":         "bicarbonate",
	"hco3":        "bicarbonate",
	"hco3-":       "bicarbonate",
	"tco2":        "bicarbonate",
	"bicarbonate": "bicarbonate",
	"bicarb":      "bicarbonate",
	"ca":          "calcium",
	"ca++":        "calcium",
	"calcium":     "calcium",
	"ca total":    "calcium",
	"mg":          "magnesium",
	"mg++":        "magnesium",
	"magnesium":   "magnesium",
	"phos":        "phosphate",
	"po4":         "phosphate",
	"phosphorus":  "phosphate",
	"phosphate":   "phosphate",

	// Renal
	"bun":           "bun",
	"urea":          "bun",
	"urea nitrogen": "bun",
	"cr":            "creatinine",
	"crea":          "creatinine",
	"creat":         "creatinine",
	"creatinine":    "creatinine",
	"egfr":          "egfr",
	"gfr":           "egfr",

	// Glucose
	"glu":         "glucose",
	"glucose":     "glucose",
	"gluc":        "glucose",
	"blood sugar": "glucose",
	"bs":          "glucose",

	// CBC
	"wbc":                    "white_blood_cells",
	"white blood cells":      "white_blood_cells",
	"white blood cell count": "white_blood_cells",
	"rbc":                    "red_blood_cells",
	"red blood cells":        "red_blood_cells",
	"hgb":                    "hemoglobin",
	"hb":                     "hemoglobin",
	"hemoglobin":             "hemoglobin",
	"haemoglobin":            "hemoglobin",
	"hct":                    "hematocrit",
	"hematocrit":             "hematocrit",
	"haematocrit":            "hematocrit",
	"plt":                    "platelets",
	"platelets":              "platelets",
	"platelet count":         "platelets",
	"mcv":                    "mcv",
	"m.c.v":                  "mcv",
	"mch":                    "mch",
	"m.c.h":                  "mch",
	"mchc":                   "mchc",
	"m.c.h.c":                "mchc",
	"rdw":                    "rdw",
	"mpv":                    "mpv",

	// Differential
	"neut":        "neutrophils",
	"neutrophils": "neutrophils",
	"neutrophil":  "neutrophils",
	"neut%":       "neutrophils_pct",
	"lymph":       "lymphocytes",
	"lymphocytes": "lymphocytes",
	"lymph%":      "lymphocytes_pct",
	"mono":        "monocytes",
	"monocytes":   "monocytes",
	"eos":         "eosinophils",
	"eosinophils": "eosinophils",
	"baso":        "basophils",
	"basophils":   "basophils",

	// Liver function
	"alt":                  "alt",
	"sgpt":                 "alt",
	"ast":                  "ast",
	"sgot":                 "ast",
	"alp":                  "alp",
	"alkaline phosphatase": "alp",
	"alk phos":             "alp",
	"ggt":                  "ggt",
	"gamma gt":             "ggt",
	"tbil":                 "total_bilirubin",
	"total bilirubin":      "total_bilirubin",
	"t. bilirubin":         "total_bilirubin",
	"bilirubin total":      "total_bilirubin",
	"dbil":                 "direct_bilirubin",
	"direct bilirubin":     "direct_bilirubin",
	"d. bilirubin":         "direct_bilirubin",
	"albumin":              "albumin",
	"alb":                  "albumin",
	"total protein":        "total_protein",
	"tp":                   "total_protein",

	// Coagulation
	"pt":               "pt",
	"prothrombin time": "pt",
	"inr":              "inr",
	"aptt":             "aptt",
	"ptt":              "aptt",

	// Cardiac
	"troponin i": "troponin_i",
	"tni":        "troponin_i",
	"hs-tni":     "troponin_i",
	"troponin t": "troponin_t",
	"tnt":        "troponin_t",
	"hs-tnt":     "troponin_t",
	"bnp":        "bnp",
	"nt-probnp":  "nt_probnp",
	"pro-bnp":    "nt_probnp",
	"ck":         "ck",
	"cpk":        "ck",
	"ck-mb":      "ck_mb",
	"ldh":        "ldh",

	// Thyroid
	"tsh":     "tsh",
	"ft4":     "free_t4",
	"free t4": "free_t4",
	"ft3":     "free_t3",
	"free t3": "free_t3",
	"t4":      "total_t4",
	"t3":      "total_t3",

	// Iron studies
	"iron":            "iron",
	"fe":              "iron",
	"ferritin":        "ferritin",
	"tibc":            "tibc",
	"transferrin sat": "transferrin_saturation",

	// Inflammatory markers
	"crp":                "crp",
	"c-reactive protein": "crp",
	"esr":                "esr",
	"sed rate":           "esr",
	"procalcitonin":      "procalcitonin",
	"pct":                "procalcitonin",

	// HbA1c
	"hba1c":               "hba1c",
	"a1c":                 "hba1c",
	"glycated hemoglobin": "hba1c",

	// Lipids
	"total cholesterol": "total_cholesterol",
	"chol":              "total_cholesterol",
	"ldl":               "ldl",
	"ldl-c":             "ldl",
	"hdl":               "hdl",
	"hdl-c":             "hdl",
	"triglycerides":     "triglycerides",
	"trig":              "triglycerides",
	"tg":                "triglycerides",

	// Blood gas
	"ph":      "ph",
	"pco2":    "pco2",
	"po2":     "po2",
	"pao2":    "po2",
	"sao2":    "sao2",
	"lactate": "lactate",

	// Urinalysis
	"urine protein":    "urine_protein",
	"urine glucose":    "urine_glucose",
	"urine ph":         "urine_ph",
	"specific gravity": "specific_gravity",
}

var (
	// \s is ASCII only, so Unicode spaces such as NBSP are listed separately
	analyteNameStripRe = regexp.MustCompile(`[^\p{L}\p{N}_\p{Z}\s.+-]`)
	whitespaceRunRe    = regexp.MustCompile(`[\p{Z}\s]+`)
)

// NormalizeAnalyteKey maps a raw test name to a canonical snake_case key.
// Names missing from the alias table fall back to a best-effort snake_case
// of the cleaned name.
func NormalizeAnalyteKey(rawName string) string {
	cleaned := analyteNameStripRe.ReplaceAllString(strings.TrimSpace(rawName), "")
	cleaned = strings.TrimSpace(strings.ToLower(cleaned))

	if key, ok := analyteAliases[cleaned]; ok {
		return key
	}

	stripped := strings.TrimRightFunc(cleaned, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
	if key, ok := analyteAliases[stripped]; ok {
		return key
	}

	return whitespaceRunRe.ReplaceAllString(cleaned, "_")
}

// DisplayName converts an analyte key such as "white_blood_cells" into
// "White Blood Cells".
func DisplayName(analyteKey string) string {
	// Casers carry state, so each call gets its own
	return cases.Title(language.Und).String(strings.ReplaceAll(analyteKey, "_", " "))
}
