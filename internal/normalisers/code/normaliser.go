// Package code normalises programming-language source files.
package code

import (
	"context"
	"fmt"
	"strings"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles source code. It prepends a file header so the
// path's terms participate in retrieval, and tidies whitespace without
// touching code structure.
type Normaliser struct{}

// New creates a new code normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the format kind this normaliser handles.
func (n *Normaliser) Kind() domain.FormatKind {
	return domain.FormatCode
}

// Normalise extracts normalised text from a source file.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawSource) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	content := strings.ReplaceAll(string(raw.Data), "\r\n", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# File: %s\n", raw.SourcePath)
	b.WriteString(strings.Join(lines, "\n"))

	return strings.TrimRight(b.String(), "\n"), nil
}
