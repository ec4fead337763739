package driving

import (
	"context"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
)

// IngestService indexes sources into the document store.
type IngestService interface {
	// AddPath ingests a file or every regular file under a directory.
	// Per-file failures are recorded in the report and do not abort the
	// remaining files.
	AddPath(ctx context.Context, path string) (*IngestReport, error)

	// AddText ingests literal text under a logical source name and
	// returns the stored document.
	AddText(ctx context.Context, name, content string) (*domain.Document, error)

	// Remove deletes a document by id or source path.
	Remove(ctx context.Context, idOrPath string) error
}

// IngestReport summarises one AddPath call.
type IngestReport struct {
	// Indexed counts documents newly indexed or re-embedded.
	Indexed int

	// Skipped counts documents whose content hash was unchanged.
	Skipped int

	// Unindexable counts documents recorded with zero chunks because
	// their content could not be normalised (e.g. binary data).
	Unindexable int

	// Failed counts documents whose ingestion was aborted.
	Failed int

	// Failures details each failed source.
	Failures []IngestFailure
}

// IngestFailure records a single per-document ingestion failure.
type IngestFailure struct {
	SourcePath string
	Err        error
}
