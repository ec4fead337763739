package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// idNamespace scopes document identity so the same path always maps to
// the same id across processes and machines.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("termrag"))

// Document represents an indexed document. It is the canonical
// representation after normalisation, chunking and embedding.
type Document struct {
	// ID is the stable identifier derived from the canonical source path.
	ID string

	// SourcePath is the absolute path or logical source name.
	SourcePath string

	// ContentHash is the digest of the raw content. Re-adding a source
	// whose hash is unchanged is a no-op.
	ContentHash string

	// Format is the detected content category.
	Format FormatKind

	// Chunks holds the normalised spans in document order.
	Chunks []Chunk

	// IndexedAt is when the document was last (re-)embedded.
	IndexedAt time.Time
}

// Chunk represents a bounded span of normalised text within a document.
// Documents are split into chunks for granular retrieval.
type Chunk struct {
	// Text is the normalised text span.
	Text string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the fixed-length vector representation.
	Embedding []float32
}

// DocumentSummary is the listing view of a document. It omits chunk
// contents and embeddings.
type DocumentSummary struct {
	ID         string
	SourcePath string
	Format     FormatKind
	ChunkCount int
	IndexedAt  time.Time
}

// Summary produces the listing view of the document.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:         d.ID,
		SourcePath: d.SourcePath,
		Format:     d.Format,
		ChunkCount: len(d.Chunks),
		IndexedAt:  d.IndexedAt,
	}
}

// DocumentID derives the stable document id for a source path.
// The same path always yields the same id (UUIDv5 over the path).
func DocumentID(sourcePath string) string {
	return uuid.NewSHA1(idNamespace, []byte(sourcePath)).String()
}

// HashContent computes the content digest used for change detection.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RawSource represents opaque bytes read from a source path, before
// normalisation.
type RawSource struct {
	// SourcePath is the original location (file path or logical name).
	SourcePath string

	// Data is the raw bytes.
	Data []byte
}
