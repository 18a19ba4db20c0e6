/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package lab

import (
	"encoding/json"
	"strings"
	"time"
)

// Flag classifies a value relative to its reference range. The zero value
// means no flag was reported.
type Flag string

const (
	FlagNormal       Flag = "normal"
	FlagLow          Flag = "low"
	FlagHigh         Flag = "high"
	FlagCriticalLow  Flag = "critical_low"
	FlagCriticalHigh Flag = "critical_high"
)

// IsCritical reports whether f is one of the critical flags.
func (f Flag) IsCritical() bool {
	return f == FlagCriticalLow || f == FlagCriticalHigh
}

// IsAbnormal reports whether f is anything other than normal or absent.
func (f Flag) IsAbnormal() bool {
	return f != "" && f != FlagNormal
}

// Direction characterizes an analyte's observations over time.
type Direction string

const (
	DirectionImproving   Direction = "improving"
	DirectionWorsening   Direction = "worsening"
	DirectionStable      Direction = "stable"
	DirectionFluctuating Direction = "fluctuating"
)

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the date for the given calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD, falling back to RFC 3339 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return Date{}, err
		}
		t = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}

	return Date{t}, nil
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. A JSON null leaves d unchanged.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// ReferenceRange is a parsed numeric reference range. Either bound may be
// absent.
type ReferenceRange struct {
	Low     *float64 `json:"low"`
	High    *float64 `json:"high"`
	RawText string   `json:"raw_text"`
}

// IsBounded reports whether at least one bound is present.
func (r ReferenceRange) IsBounded() bool {
	return r.Low != nil || r.High != nil
}

// Observation is a single measured value on a specific date.
type Observation struct {
	Date          Date    `json:"date"`
	Value         float64 `json:"value"`
	RawValue      string  `json:"raw_value"`
	FlagExtracted Flag    `json:"flag_extracted,omitempty"`
	FlagComputed  Flag    `json:"flag_computed,omitempty"`
	SourceImageID string  `json:"source_image_id"`
}

// PatientMeta holds patient metadata extracted from a report.
type PatientMeta struct {
	MRN      string         `json:"mrn"`
	Name     string         `json:"name"`
	DOB      *Date          `json:"dob,omitempty"`
	Gender   string         `json:"gender"`
	Location string         `json:"location"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Analyte is one lab test with its observations across dates.
type Analyte struct {
	// Raw extracted fields, kept for audit
	RawName      string `json:"raw_name"`
	RawUnit      string `json:"raw_unit"`
	RawRangeText string `json:"raw_range_text"`

	// Normalized fields, used for computation
	AnalyteKey    string         `json:"analyte_key"`
	DisplayName   string         `json:"display_name"`
	Unit          string         `json:"unit"`
	UnitCanonical string         `json:"unit_canonical"`
	RefRange      ReferenceRange `json:"ref_range"`

	Observations []Observation `json:"observations"`
}

// Panel is a logical grouping of analytes such as a CBC or BMP.
type Panel struct {
	PanelName string    `json:"panel_name"`
	Results   []Analyte `json:"results"`
}

// Report is the extraction result for a single image.
type Report struct {
	SourceImageID string          `json:"source_image_id"`
	CapturedAt    *time.Time      `json:"captured_at,omitempty"`
	Patient       PatientMeta     `json:"patient"`
	Panels        []Panel         `json:"panels"`
	RawJSON       json.RawMessage `json:"raw_json,omitempty"`
}

// AnalyteCount returns the number of analytes across all panels.
func (r Report) AnalyteCount() int {
	n := 0
	for _, p := range r.Panels {
		n += len(p.Results)
	}
	return n
}

// Trend is derived from a single analyte and never edited by hand.
type Trend struct {
	AnalyteKey    string         `json:"analyte_key"`
	DisplayName   string         `json:"display_name"`
	Unit          string         `json:"unit,omitempty"`
	RefRange      ReferenceRange `json:"ref_range"`
	Direction     Direction      `json:"direction"`
	PctChange     float64        `json:"pct_change"`
	LatestValue   *float64       `json:"latest_value"`
	LatestFlag    Flag           `json:"latest_flag,omitempty"`
	SeverityScore float64        `json:"severity_score"`
	Observations  []Observation  `json:"observations"`
}

// AnalysisReport is the terminal artifact of the full pipeline.
type AnalysisReport struct {
	Reports        []Report  `json:"reports"`
	MergedTimeline []Analyte `json:"merged_timeline"`
	Trends         []Trend   `json:"trends"`
	CriticalFlags  []Trend   `json:"critical_flags"`
	Summary        string    `json:"summary"`
}

// WithoutRawPayloads returns a shallow copy of the analysis whose reports
// have their raw model payloads dropped.
func (a *AnalysisReport) WithoutRawPayloads() *AnalysisReport {
	out := *a
	out.Reports = make([]Report, len(a.Reports))
	for i, r := range a.Reports {
		r.RawJSON = nil
		out.Reports[i] = r
	}
	return &out
}

// CriticalTrends returns the trends whose latest flag is critical, in order.
func CriticalTrends(trends []Trend) []Trend {
	critical := make([]Trend, 0)
	for _, t := range trends {
		if t.LatestFlag.IsCritical() {
			critical = append(critical, t)
		}
	}
	return critical
}

func float64Ptr(f float64) *float64 {
	return &f
}
