package driven

import (
	"context"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
)

// Normaliser transforms raw source bytes of one format kind into
// normalised text ready for chunking.
type Normaliser interface {
	// Kind returns the format kind this normaliser handles.
	Kind() domain.FormatKind

	// Normalise extracts normalised text from the raw source.
	Normalise(ctx context.Context, raw *domain.RawSource) (string, error)
}

// Classifier detects the format kind of a raw source from its path
// extension and content sniffing. Binary content classifies as
// domain.FormatUnknown, which yields zero chunks.
type Classifier interface {
	Detect(sourcePath string, data []byte) domain.FormatKind
}

// Chunker splits normalised content into ordered, bounded text spans.
// Splits happen at natural boundaries (paragraph or line breaks, then
// word boundaries), never mid-token.
type Chunker interface {
	Split(content string) []string
}
