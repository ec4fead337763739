// Package markup normalises semi-structured markup (Markdown, HTML, XML).
package markup

import (
	"context"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles markup documents. Tags and formatting syntax are
// stripped so only the readable text is embedded.
type Normaliser struct{}

// New creates a new markup normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the format kind this normaliser handles.
func (n *Normaliser) Kind() domain.FormatKind {
	return domain.FormatMarkup
}

// Normalise extracts readable text from a markup source.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawSource) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	content := strings.ReplaceAll(string(raw.Data), "\r\n", "\n")

	switch strings.ToLower(filepath.Ext(raw.SourcePath)) {
	case ".md", ".markdown":
		content = stripMarkdown(content)
	default:
		content = stripTags(content)
	}

	content = blankRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content), nil
}

var (
	blankRuns    = regexp.MustCompile(`\n{3,}`)
	scriptBlocks = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tags         = regexp.MustCompile(`<[^>]*>`)

	mdHeadings  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdEmphasis  = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
	mdLinks     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdCodeFence = regexp.MustCompile("(?m)^```[^\n]*$")
	mdInline    = regexp.MustCompile("`([^`]*)`")
)

// stripTags removes HTML/XML tags and unescapes entities.
func stripTags(content string) string {
	content = scriptBlocks.ReplaceAllString(content, " ")
	content = tags.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)

	// Tag removal leaves ragged spacing; tidy each line.
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// stripMarkdown removes formatting syntax while keeping the text,
// including the contents of code fences.
func stripMarkdown(content string) string {
	content = mdCodeFence.ReplaceAllString(content, "")
	content = mdHeadings.ReplaceAllString(content, "")
	content = mdLinks.ReplaceAllString(content, "$1")
	content = mdEmphasis.ReplaceAllString(content, "$2")
	content = mdInline.ReplaceAllString(content, "$1")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
