package driven

// Embedder generates fixed-length vector embeddings from text.
//
// Implementations must be pure and deterministic: the same text always
// yields a bit-identical vector, with no network calls and no hidden
// state. Vectors are L2-normalised so cosine similarity and dot
// product coincide.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(text string) []float32

	// EmbedBatch embeds multiple texts. Implementations may parallelise
	// internally; results are positioned by input index so the output
	// is deterministic regardless of execution order.
	EmbedBatch(texts []string) [][]float32

	// Dimensions returns the fixed embedding vector size.
	Dimensions() int
}
