package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
)

// CleanMarkdown strips surrounding whitespace and one outer code fence such as
// ```json ... ``` from model output.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") || len(cleaned) < 6 {
		return cleaned
	}

	cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "```"), "```")
	// Drop a language tag on the opening fence line
	if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
		tag := strings.TrimSpace(cleaned[:nl])
		if tag != "" && !strings.ContainsAny(tag, "{[\"") {
			cleaned = cleaned[nl+1:]
		}
	}
	return strings.TrimSpace(cleaned)
}

var markdown = goldmark.New()

// RenderMarkdown converts trusted Markdown copy into HTML for templates.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
