package domain

// QueryResult represents a single ranked retrieval hit.
type QueryResult struct {
	// DocumentID is the matched document.
	DocumentID string `json:"document_id"`

	// SourcePath is the document's source path, carried for display.
	SourcePath string `json:"source_path"`

	// ChunkIndex is the position of the matched chunk.
	ChunkIndex int `json:"chunk_index"`

	// Score is the cosine similarity against the query vector.
	// Embeddings are L2-normalised, so an exact match scores 1.0.
	Score float64 `json:"score"`

	// Snippet is a bounded excerpt of the matched chunk text.
	Snippet string `json:"snippet"`
}

// Answer is the result of an extractive ask operation.
type Answer struct {
	// Text is the extractive answer assembled from the top hit.
	Text string `json:"text"`

	// Sources lists the cited document ids in rank order.
	Sources []string `json:"sources,omitempty"`
}
