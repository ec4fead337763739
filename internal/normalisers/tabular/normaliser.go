// Package tabular normalises delimited and structured data files.
package tabular

import (
	"context"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles structured data. Delimited files (CSV/TSV) are
// rewritten as one "header=value" record per line so column names pair
// with their values in the same chunk; JSON/YAML/TOML pass through
// with line endings normalised, since keys and values already tokenize
// well.
type Normaliser struct{}

// New creates a new tabular normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the format kind this normaliser handles.
func (n *Normaliser) Kind() domain.FormatKind {
	return domain.FormatTabular
}

// Normalise extracts normalised text from a structured data source.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawSource) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	content := strings.ReplaceAll(string(raw.Data), "\r\n", "\n")

	switch strings.ToLower(filepath.Ext(raw.SourcePath)) {
	case ".csv":
		return normaliseDelimited(content, ','), nil
	case ".tsv":
		return normaliseDelimited(content, '\t'), nil
	default:
		return strings.TrimSpace(content), nil
	}
}

// normaliseDelimited flattens rows into "header=value" records. A file
// that fails to parse as delimited data is kept as-is rather than
// dropped.
func normaliseDelimited(content string, delim rune) string {
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil || len(rows) == 0 {
		return strings.TrimSpace(content)
	}

	headers := rows[0]
	if len(rows) == 1 {
		return strings.Join(headers, " ")
	}

	var b strings.Builder
	for _, row := range rows[1:] {
		fields := make([]string, 0, len(row))
		for i, val := range row {
			if i < len(headers) && headers[i] != "" {
				fields = append(fields, headers[i]+"="+val)
			} else {
				fields = append(fields, val)
			}
		}
		b.WriteString(strings.Join(fields, "; "))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
