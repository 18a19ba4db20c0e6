/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package render

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/humaidq/labx/lab"
)

// EChartsScript is the script URL the chart snippets expect on the page.
const EChartsScript = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// Chart is a rendered trend chart ready to embed in a page.
type Chart struct {
	Name string
	Flag lab.Flag
	HTML template.HTML
}

// TrendChart renders the observations of t as a line chart with reference
// range mark lines. A trend without observations renders as "".
func TrendChart(t lab.Trend) (string, error) {
	return trendChart(t, chartID(t.AnalyteKey, 0))
}

// TrendCharts renders up to limit charts, in trend order. A limit of zero
// or less renders every trend.
func TrendCharts(a *lab.AnalysisReport, limit int) ([]Chart, error) {
	trends := a.Trends
	if limit > 0 && len(trends) > limit {
		trends = trends[:limit]
	}

	out := make([]Chart, 0, len(trends))
	for i, t := range trends {
		snippet, err := trendChart(t, chartID(t.AnalyteKey, i))
		if err != nil {
			return nil, fmt.Errorf("failed to render chart for %s: %w", t.AnalyteKey, err)
		}
		if snippet == "" {
			continue
		}

		out = append(out, Chart{
			Name: t.DisplayName,
			Flag: t.LatestFlag,
			HTML: template.HTML(snippet), //nolint:gosec // generated by go-echarts from numeric data
		})
	}

	return out, nil
}

func chartID(key string, n int) string {
	var b strings.Builder
	b.WriteString("trend_")
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	fmt.Fprintf(&b, "_%d", n)
	return b.String()
}

func trendChart(t lab.Trend, id string) (_ string, err error) {
	if len(t.Observations) == 0 {
		return "", nil
	}

	// RenderSnippet panics on template errors
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chart render failed: %v", r)
		}
	}()

	xAxis := make([]string, 0, len(t.Observations))
	yData := make([]opts.LineData, 0, len(t.Observations))
	dataMin, dataMax := t.Observations[0].Value, t.Observations[0].Value

	for _, o := range t.Observations {
		xAxis = append(xAxis, o.Date.Format("Jan 2, 2006"))
		yData = append(yData, opts.LineData{Value: o.Value})
		dataMin = min(dataMin, o.Value)
		dataMax = max(dataMax, o.Value)
	}

	yAxisMin, yAxisMax := axisBounds(t.RefRange, dataMin, dataMax)

	title := t.DisplayName
	if title == "" {
		title = t.AnalyteKey
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: id,
			Width:   "100%",
			Height:  "320px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: t.Unit,
			Min:  yAxisMin,
			Max:  yAxisMax,
		}),
	)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(true),
		}),
		charts.WithMarkPointNameTypeItemOpts(
			opts.MarkPointNameTypeItem{Name: "Max", Type: "max"},
			opts.MarkPointNameTypeItem{Name: "Min", Type: "min"},
		),
	}

	var markLineItems []interface{}
	if t.RefRange.Low != nil {
		markLineItems = append(markLineItems, opts.MarkLineNameYAxisItem{
			Name:  "Ref Low",
			YAxis: *t.RefRange.Low,
		})
	}
	if t.RefRange.High != nil {
		markLineItems = append(markLineItems, opts.MarkLineNameYAxisItem{
			Name:  "Ref High",
			YAxis: *t.RefRange.High,
		})
	}

	if len(markLineItems) > 0 {
		seriesOpts = append(seriesOpts, func(s *charts.SingleSeries) {
			s.MarkLines = &opts.MarkLines{
				Data: markLineItems,
				MarkLineStyle: opts.MarkLineStyle{
					Symbol: []string{"none", "none"},
					LineStyle: &opts.LineStyle{
						Color: "rgba(128, 128, 128, 0.6)",
						Type:  "dashed",
						Width: 1.5,
					},
				},
			}
		})
	}

	line.SetXAxis(xAxis).
		AddSeries(title, yData).
		SetSeriesOptions(seriesOpts...)

	snippet := line.RenderSnippet()

	return snippet.Element + snippet.Script, nil
}

// axisBounds pads the y axis so both the data and the reference range are
// visible. Nil means let echarts choose.
func axisBounds(r lab.ReferenceRange, dataMin, dataMax float64) (interface{}, interface{}) {
	if r.Low == nil || r.High == nil {
		return nil, nil
	}

	padding := (*r.High - *r.Low) * 0.1
	minVal := *r.Low - padding
	maxVal := *r.High + padding

	if dataMin < minVal {
		minVal = dataMin - (dataMax-dataMin)*0.05
	}
	if dataMax > maxVal {
		maxVal = dataMax + (dataMax-dataMin)*0.05
	}

	return round2(minVal), round2(maxVal)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
