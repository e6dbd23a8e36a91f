package report

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

	reMethodHeading  = regexp.MustCompile(`(?i)<h2([^>]*)>\s*How This Report Works\s*</h2>`)
	reProjectHeading = regexp.MustCompile(`<h2([^>]*)>\s*(Project\s+[^<]*)</h2>`)
	reDecisionCell   = regexp.MustCompile(`<td([^>]*)>(Strong Participate|Participate|Conditional|Reject)</td>`)
)

const stylesheet = `
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;color:#1c1917;background:#fff;padding:0.6rem;}
.report{max-width:1000px;margin:0 auto;}
.report h1{border-bottom:3px solid #92400e;padding-bottom:0.3rem;}
.report table{width:100%;border-collapse:collapse;border:1px solid #a8a29e;font-size:0.8rem;margin-bottom:1rem;}
.report th,.report td{border:1px solid #a8a29e;padding:0.35rem 0.45rem;vertical-align:top;}
.report thead th{background:#f1f5f9;font-weight:700;}
.report h2[data-project="true"]{border-left:4px solid #92400e;padding-left:0.5rem;}
td.decision-strong-participate{background:#dcfce7;font-weight:700;}
td.decision-participate{background:#ecfccb;}
td.decision-conditional{background:#fef3c7;}
td.decision-reject{background:#fee2e2;}
h2[data-page-break-before="true"]{break-before:page;page-break-before:always;}
@media print{@page{size:auto;margin:12mm;} body{padding:0;} .report{max-width:none;}}
`

// RenderHTML converts the Markdown report into a standalone HTML document.
func RenderHTML(title, report string) (string, error) {
	var content strings.Builder
	if err := markdown.Convert([]byte(report), &content); err != nil {
		return "", fmt.Errorf("report: markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(title) + "</title>" +
		"<style>" + stylesheet + "</style></head><body><div class='report'>" +
		applyLayoutHooks(content.String()) +
		"</div></body></html>", nil
}

// applyLayoutHooks tags headings and decision cells for print styling.
func applyLayoutHooks(contentHTML string) string {
	out := reMethodHeading.ReplaceAllString(contentHTML, `<h2$1 data-page-break-before="true">How This Report Works</h2>`)
	out = reProjectHeading.ReplaceAllString(out, `<h2$1 data-project="true">$2</h2>`)
	return reDecisionCell.ReplaceAllStringFunc(out, func(cell string) string {
		m := reDecisionCell.FindStringSubmatch(cell)
		class := "decision-" + strings.ReplaceAll(strings.ToLower(m[2]), " ", "-")
		return `<td` + m[1] + ` class="` + class + `">` + m[2] + `</td>`
	})
}
