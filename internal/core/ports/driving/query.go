package driving

import (
	"context"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
)

// QueryService answers similarity queries over the indexed corpus.
type QueryService interface {
	// Search returns the top k chunks ranked by descending cosine
	// similarity. A blank query or an empty store yields an empty list,
	// not an error.
	Search(ctx context.Context, query string, k int) ([]domain.QueryResult, error)

	// Ask composes Search with extractive summarisation of the top
	// result and returns the answer with cited source ids.
	Ask(ctx context.Context, question string, k int) (*domain.Answer, error)

	// Summarize concatenates the top-k snippets for a topic.
	Summarize(ctx context.Context, topic string, k int) (string, error)
}
