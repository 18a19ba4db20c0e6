/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/humaidq/labx/lab"
)

// MaxCharts bounds the charts rendered into an analysis page.
const MaxCharts = 12

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html"))

// FuncMap returns the helpers used by the analysis templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"flagClass": FlagClass,
		"value":     formatValue,
		"refRange":  formatRange,
	}
}

type bodyData struct {
	Analysis *lab.AnalysisReport
	Charts   []Chart
	Report   template.HTML
}

type documentData struct {
	Title         string
	EChartsScript string
	Body          template.HTML
}

// AnalysisBody renders the analysis as an HTML fragment: an overview, trend
// charts and the org report converted to HTML. Pages embedding it must load
// EChartsScript.
func AnalysisBody(a *lab.AnalysisReport) (template.HTML, error) {
	report, err := OrgToHTML(AnalysisOrg(a))
	if err != nil {
		return "", err
	}

	charts, err := TrendCharts(a, MaxCharts)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "body.html", bodyData{
		Analysis: a,
		Charts:   charts,
		Report:   template.HTML(report), //nolint:gosec // HTML comes from trusted org parser output.
	}); err != nil {
		return "", fmt.Errorf("failed to render analysis body: %w", err)
	}

	return template.HTML(buf.String()), nil //nolint:gosec // rendered by html/template above.
}

// AnalysisHTML renders a standalone HTML document for the analysis.
func AnalysisHTML(a *lab.AnalysisReport) (string, error) {
	body, err := AnalysisBody(a)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "document.html", documentData{
		Title:         "Lab analysis",
		EChartsScript: EChartsScript,
		Body:          body,
	}); err != nil {
		return "", fmt.Errorf("failed to render analysis document: %w", err)
	}

	return buf.String(), nil
}
