// Package render turns standardization reports into markdown and HTML for
// the CLI and the API. Formatting is strictly downstream of the core; the
// numeric content comes from the table unchanged.
package render

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"goeffect/domain/report"
	"goeffect/domain/standard"
)

// Markdown renders a report as a markdown document with one coefficient table.
func Markdown(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Standardized coefficients (%s)\n\n", r.Request.Method)
	if r.Dataset != "" {
		fmt.Fprintf(&b, "Dataset: %s  \n", r.Dataset)
	}
	fmt.Fprintf(&b, "Response: %s  \n", r.Spec.Response)
	fmt.Fprintf(&b, "CI level: %.0f%%\n\n", r.Table.CILevel*100)

	b.WriteString(Table(r.Table))

	if len(r.EffectSizes) > 0 {
		b.WriteString("\n## Effect sizes\n\n")
		b.WriteString("| Kind | Value |\n|---|---|\n")
		for _, es := range r.EffectSizes {
			fmt.Fprintf(&b, "| %s | %.4f |\n", es.Kind, es.Value)
		}
	}

	return b.String()
}

// Table renders just the coefficient table.
func Table(t standard.Table) string {
	var b strings.Builder
	b.WriteString("| Term | Estimate | SE | CI low | CI high | Notes |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, row := range t.Rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row.Term, rowCells(row))
	}
	return b.String()
}

func rowCells(row standard.Row) string {
	if row.Failed() {
		return fmt.Sprintf("- | - | - | - | %s", row.Error)
	}
	notes := make([]string, 0, len(row.Warnings)+1)
	if row.Approximate {
		notes = append(notes, "approximate")
	}
	for _, w := range row.Warnings {
		notes = append(notes, strings.ToLower(string(w)))
	}
	return fmt.Sprintf("%.4f | %.4f | %.4f | %.4f | %s",
		row.Estimate, row.SE, row.CILow, row.CIHigh, strings.Join(notes, ", "))
}

// HTML renders the markdown report to HTML.
func HTML(r *report.Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(Markdown(r)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
