package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagPattern = regexp.MustCompile(`(?i)<\s*(html|body|div|p|span|article|section|br|table|h[1-6])\b[^>]*>`)
	blankRun       = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
)

// LooksLikeHTML reports whether pasted text is markup rather than prose.
func LooksLikeHTML(s string) bool {
	return htmlTagPattern.MatchString(s)
}

// PlainText reduces an HTML article to readable text. Scripts, styles, hidden
// elements and page chrome are dropped; block elements become line breaks.
func PlainText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template, nav, header, footer, aside, form").Remove()
	doc.Find("[hidden], [aria-hidden='true'], [style*='display:none'], [style*='display: none']").Remove()

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6, article, section, blockquote").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	doc.Find("td, th").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(blankRun.ReplaceAllString(l, " "))
	}
	text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text), nil
}
