// Package artifact encodes the portable store artifact used by export
// and import. The artifact is a single JSON file carrying a format
// version, the generation counter, a checksum and the ordered document
// list with embedded chunk vectors. Encoding is canonical: the same
// store contents always produce the same bytes, and the checksum is
// verified on decode.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
)

// FormatVersion identifies the artifact layout. Decode rejects
// versions it does not understand.
const FormatVersion = 1

// File is the top-level artifact layout.
type File struct {
	FormatVersion int        `json:"format_version"`
	Generation    uint64     `json:"generation"`
	Checksum      string     `json:"checksum"`
	Documents     []Document `json:"documents"`
}

// Document is the serialized form of a domain.Document.
type Document struct {
	ID          string    `json:"id"`
	SourcePath  string    `json:"source_path"`
	ContentHash string    `json:"content_hash"`
	Format      string    `json:"format_kind"`
	IndexedAt   time.Time `json:"indexed_at"`
	Chunks      []Chunk   `json:"chunks"`
}

// Chunk is the serialized form of a domain.Chunk.
type Chunk struct {
	Text      string    `json:"text"`
	Position  int       `json:"position"`
	Embedding []float32 `json:"embedding"`
}

// Encode serializes documents and the generation counter into artifact
// bytes, computing the content checksum.
func Encode(docs []domain.Document, generation uint64) ([]byte, error) {
	out := File{
		FormatVersion: FormatVersion,
		Generation:    generation,
		Documents:     make([]Document, 0, len(docs)),
	}
	for i := range docs {
		out.Documents = append(out.Documents, fromDomain(&docs[i]))
	}

	sum, err := checksum(out.Documents)
	if err != nil {
		return nil, fmt.Errorf("checksumming artifact: %w", err)
	}
	out.Checksum = sum

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding artifact: %w", err)
	}
	return data, nil
}

// Decode parses artifact bytes, verifies the checksum and returns the
// documents in their original order together with the stored
// generation counter. Unparseable bytes, an unknown format version or
// a checksum mismatch all report domain.ErrIndexCorrupted.
func Decode(data []byte) ([]domain.Document, uint64, error) {
	var in File
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrIndexCorrupted, err)
	}
	if in.FormatVersion != FormatVersion {
		return nil, 0, fmt.Errorf("%w: unsupported format version %d", domain.ErrIndexCorrupted, in.FormatVersion)
	}

	sum, err := checksum(in.Documents)
	if err != nil {
		return nil, 0, fmt.Errorf("checksumming artifact: %w", err)
	}
	if sum != in.Checksum {
		return nil, 0, fmt.Errorf("%w: checksum mismatch", domain.ErrIndexCorrupted)
	}

	docs := make([]domain.Document, 0, len(in.Documents))
	for i := range in.Documents {
		doc, err := toDomain(&in.Documents[i])
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, *doc)
	}
	return docs, in.Generation, nil
}

// checksum hashes the canonical JSON encoding of the document list.
func checksum(docs []Document) (string, error) {
	payload, err := json.Marshal(docs)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func fromDomain(doc *domain.Document) Document {
	out := Document{
		ID:          doc.ID,
		SourcePath:  doc.SourcePath,
		ContentHash: doc.ContentHash,
		Format:      doc.Format.String(),
		IndexedAt:   doc.IndexedAt,
		Chunks:      make([]Chunk, 0, len(doc.Chunks)),
	}
	for _, c := range doc.Chunks {
		out.Chunks = append(out.Chunks, Chunk{
			Text:      c.Text,
			Position:  c.Position,
			Embedding: c.Embedding,
		})
	}
	return out
}

func toDomain(doc *Document) (*domain.Document, error) {
	kind, err := domain.ParseFormatKind(doc.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupted, err)
	}
	out := &domain.Document{
		ID:          doc.ID,
		SourcePath:  doc.SourcePath,
		ContentHash: doc.ContentHash,
		Format:      kind,
		IndexedAt:   doc.IndexedAt,
		Chunks:      make([]domain.Chunk, 0, len(doc.Chunks)),
	}
	for _, c := range doc.Chunks {
		out.Chunks = append(out.Chunks, domain.Chunk{
			Text:      c.Text,
			Position:  c.Position,
			Embedding: c.Embedding,
		})
	}
	return out, nil
}
