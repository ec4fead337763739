package driven

import (
	"context"
	"time"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
)

// DocumentStore persists documents, chunks and embeddings.
//
// The store enforces single-writer/multiple-reader discipline. Readers
// work from snapshots; a similarity scan never holds the store lock.
// Every mutation that actually changes stored content bumps the
// generation counter, which the result cache uses for invalidation.
type DocumentStore interface {
	// Upsert stores or replaces a document. If a document with the same
	// ID exists and its ContentHash is unchanged, the call is a no-op
	// that leaves IndexedAt and the generation counter untouched.
	// It reports whether stored content actually changed.
	Upsert(ctx context.Context, doc *domain.Document) (changed bool, err error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Remove deletes a document and its chunks. Removing an existing
	// document bumps the generation counter.
	Remove(ctx context.Context, id string) error

	// List returns document summaries in insertion order.
	List(ctx context.Context) ([]domain.DocumentSummary, error)

	// Snapshot returns an immutable view of the flat chunk arena for
	// lock-free similarity scans. Mutations after the snapshot is taken
	// are not visible through it.
	Snapshot(ctx context.Context) (*StoreSnapshot, error)

	// Replace swaps the entire store contents for the given documents,
	// preserving their order and IndexedAt timestamps. The generation
	// counter advances past both the current and the supplied value so
	// cached results can never survive an import.
	Replace(ctx context.Context, docs []domain.Document, generation uint64) error

	// Generation returns the current generation counter.
	Generation(ctx context.Context) (uint64, error)

	// Stats returns document and chunk counts plus the generation.
	Stats(ctx context.Context) (StoreStats, error)

	// Clear removes all documents and bumps the generation counter.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// StoreSnapshot is an immutable read view over the store.
// Entries form a flat arena of (chunk ref, embedding) pairs; the slice
// is replaced wholesale on mutation and never modified in place, so
// holders may scan it without locking.
type StoreSnapshot struct {
	// Generation is the counter value the snapshot was taken at.
	Generation uint64

	// Entries lists every stored chunk in document insertion order,
	// then chunk order.
	Entries []SnapshotEntry
}

// SnapshotEntry is one chunk reference in the scan arena.
type SnapshotEntry struct {
	DocumentID string
	SourcePath string
	ChunkIndex int
	Text       string
	Embedding  []float32
	IndexedAt  time.Time
}

// StoreStats summarises store contents for status reporting.
type StoreStats struct {
	Documents  int
	Chunks     int
	Generation uint64
}
