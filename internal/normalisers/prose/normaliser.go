// Package prose normalises plain-text documents.
package prose

import (
	"context"
	"regexp"
	"strings"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain and lightly structured text.
type Normaliser struct{}

// New creates a new prose normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the format kind this normaliser handles.
func (n *Normaliser) Kind() domain.FormatKind {
	return domain.FormatProse
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Normalise trims trailing whitespace per line and collapses runs of
// blank lines, preserving paragraph boundaries for the chunker.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawSource) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	content := strings.ReplaceAll(string(raw.Data), "\r\n", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")
	content = blankRuns.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content), nil
}
