/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/niklasfasching/go-org/org"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/humaidq/labx/lab"
)

var trendHeader = []string{"Analyte", "Latest", "Unit", "Range", "Flag", "Direction", "Change", "Severity"}

// AnalysisOrg renders the analysis as an org-mode document.
func AnalysisOrg(a *lab.AnalysisReport) string {
	var b strings.Builder

	b.WriteString("#+TITLE: Lab analysis\n\n")
	fmt.Fprintf(&b, "%d report(s), %d analytes, %d trends, %d critical.\n\n",
		len(a.Reports), len(a.MergedTimeline), len(a.Trends), len(a.CriticalFlags))

	b.WriteString("* Critical values\n")
	if len(a.CriticalFlags) == 0 {
		b.WriteString("None.\n")
	} else {
		writeTrendTable(&b, a.CriticalFlags)
	}

	b.WriteString("\n* Trends\n")
	if len(a.Trends) == 0 {
		b.WriteString("None.\n")
	} else {
		writeTrendTable(&b, a.Trends)
	}

	if len(a.MergedTimeline) > 0 {
		b.WriteString("\n* Timeline\n")
		for _, an := range a.MergedTimeline {
			writeTimeline(&b, an)
		}
	}

	if strings.TrimSpace(a.Summary) != "" {
		b.WriteString("\n* Summary\n")
		for _, line := range strings.Split(strings.TrimSpace(a.Summary), "\n") {
			b.WriteString(orgText(line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeTrendTable(b *strings.Builder, trends []lab.Trend) {
	writeRow(b, trendHeader)
	writeSeparator(b, len(trendHeader))
	for _, t := range trends {
		writeRow(b, []string{
			t.DisplayName,
			formatValue(t.LatestValue),
			t.Unit,
			formatRange(t.RefRange),
			string(t.LatestFlag),
			string(t.Direction),
			fmt.Sprintf("%+.1f%%", t.PctChange),
			fmt.Sprintf("%.2f", t.SeverityScore),
		})
	}
}

func writeTimeline(b *strings.Builder, a lab.Analyte) {
	name := a.DisplayName
	if name == "" {
		name = a.RawName
	}
	unit := a.UnitCanonical
	if unit == "" {
		unit = a.Unit
	}

	fmt.Fprintf(b, "** %s", orgCell(name))
	if unit != "" {
		fmt.Fprintf(b, " (%s)", orgCell(unit))
	}
	b.WriteString("\n")

	header := []string{"Date", "Value", "Flag", "Source"}
	writeRow(b, header)
	writeSeparator(b, len(header))
	for _, o := range a.Observations {
		source := o.SourceImageID
		if len(source) > 12 {
			source = source[:12]
		}
		flag := o.FlagComputed
		if flag == "" {
			flag = o.FlagExtracted
		}
		writeRow(b, []string{o.Date.String(), formatNumber(o.Value), string(flag), source})
	}
}

func formatNumber(v float64) string {
	return formatValue(&v)
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(orgCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func writeSeparator(b *strings.Builder, n int) {
	b.WriteString("|")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString("+")
		}
		b.WriteString("---")
	}
	b.WriteString("|\n")
}

// orgCell keeps a value from breaking out of a table cell or heading.
func orgCell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// orgText keeps free text from being parsed as a heading or keyword.
func orgText(line string) string {
	if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "#+") {
		return " " + line
	}
	return line
}

// OrgToHTML converts org-mode content to an HTML fragment. Table rows that
// carry a flag are given a flag-<name> class.
func OrgToHTML(content string) (string, error) {
	config := org.New()

	doc := config.Parse(strings.NewReader(content), "")
	if doc.Error != nil {
		return "", fmt.Errorf("failed to parse org-mode content: %w", doc.Error)
	}

	writer := org.NewHTMLWriter()
	writer.HighlightCodeBlock = func(source, lang string, inline bool, params map[string]string) string {
		if inline {
			return `<code class="inline-code">` + html.EscapeString(source) + `</code>`
		}
		return `<pre><code class="code-block">` + html.EscapeString(source) + `</code></pre>`
	}

	rendered, err := doc.Write(writer)
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	annotated, err := addFlagClasses(rendered)
	if err != nil {
		return "", fmt.Errorf("failed to annotate flag rows: %w", err)
	}

	return annotated, nil
}

var knownFlags = map[string]lab.Flag{
	string(lab.FlagNormal):       lab.FlagNormal,
	string(lab.FlagLow):          lab.FlagLow,
	string(lab.FlagHigh):         lab.FlagHigh,
	string(lab.FlagCriticalLow):  lab.FlagCriticalLow,
	string(lab.FlagCriticalHigh): lab.FlagCriticalHigh,
}

// FlagClass is the CSS class used for rows and badges of flag f.
func FlagClass(f lab.Flag) string {
	if f == "" {
		return ""
	}
	return "flag-" + strings.ReplaceAll(string(f), "_", "-")
}

func addFlagClasses(htmlBody string) (string, error) {
	if strings.TrimSpace(htmlBody) == "" {
		return htmlBody, nil
	}

	container := &nethtml.Node{Type: nethtml.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := nethtml.ParseFragment(strings.NewReader(htmlBody), container)
	if err != nil {
		return "", err
	}

	for _, node := range nodes {
		container.AppendChild(node)
	}

	annotateFlagRows(container)

	var buffer bytes.Buffer
	for child := container.FirstChild; child != nil; child = child.NextSibling {
		if err := nethtml.Render(&buffer, child); err != nil {
			return "", err
		}
	}

	return buffer.String(), nil
}

func annotateFlagRows(node *nethtml.Node) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && child.DataAtom == atom.Tr {
			if flag, ok := rowFlag(child); ok {
				addClass(child, FlagClass(flag))
			}
			continue
		}

		annotateFlagRows(child)
	}
}

func rowFlag(tr *nethtml.Node) (lab.Flag, bool) {
	for cell := tr.FirstChild; cell != nil; cell = cell.NextSibling {
		if cell.Type != nethtml.ElementNode || cell.DataAtom != atom.Td {
			continue
		}
		if flag, ok := knownFlags[strings.TrimSpace(textContent(cell))]; ok {
			return flag, true
		}
	}
	return "", false
}

func textContent(n *nethtml.Node) string {
	if n.Type == nethtml.TextNode {
		return n.Data
	}

	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(textContent(child))
	}
	return b.String()
}

func addClass(n *nethtml.Node, class string) {
	for i, attr := range n.Attr {
		if attr.Key == "class" {
			n.Attr[i].Val = strings.TrimSpace(attr.Val + " " + class)
			return
		}
	}
	n.Attr = append(n.Attr, nethtml.Attribute{Key: "class", Val: class})
}
