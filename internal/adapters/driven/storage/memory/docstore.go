// Package memory provides an in-memory DocumentStore. It backs tests
// and the --memory mode; contents do not survive the process.
package memory

import (
	"context"
	"sync"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
//
// Documents index into a flat arena of (chunk ref, embedding) entries.
// The arena slice is rebuilt wholesale on mutation and never modified
// in place, so a snapshot is just the current slice header: readers
// scan it lock-free while writers swap in a fresh one.
type DocumentStore struct {
	mu         sync.RWMutex
	documents  map[string]*domain.Document
	order      []string // insertion order of document ids
	arena      []driven.SnapshotEntry
	generation uint64
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*domain.Document),
	}
}

// Upsert stores or replaces a document. Same id with an unchanged
// content hash is a no-op; otherwise prior chunks and embeddings are
// replaced wholesale and the generation counter advances.
func (s *DocumentStore) Upsert(_ context.Context, doc *domain.Document) (bool, error) {
	if doc == nil || doc.ID == "" {
		return false, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.documents[doc.ID]; ok {
		if existing.ContentHash == doc.ContentHash {
			return false, nil
		}
	} else {
		s.order = append(s.order, doc.ID)
	}

	cp := cloneDocument(doc)
	s.documents[doc.ID] = cp
	s.generation++
	s.rebuildArena()
	return true, nil
}

// Get retrieves a document by id.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneDocument(doc), nil
}

// Remove deletes a document and its chunks.
func (s *DocumentStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.generation++
	s.rebuildArena()
	return nil
}

// List returns document summaries in insertion order.
func (s *DocumentStore) List(_ context.Context) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.DocumentSummary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, s.documents[id].Summary())
	}
	return summaries, nil
}

// Snapshot returns the current arena for lock-free scanning.
func (s *DocumentStore) Snapshot(_ context.Context) (*driven.StoreSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &driven.StoreSnapshot{
		Generation: s.generation,
		Entries:    s.arena,
	}, nil
}

// Replace swaps the entire store contents, used by import.
// The generation advances past both the current and the supplied value.
func (s *DocumentStore) Replace(_ context.Context, docs []domain.Document, generation uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make(map[string]*domain.Document, len(docs))
	s.order = s.order[:0]
	for i := range docs {
		doc := cloneDocument(&docs[i])
		if _, ok := s.documents[doc.ID]; !ok {
			s.order = append(s.order, doc.ID)
		}
		s.documents[doc.ID] = doc
	}

	if generation > s.generation {
		s.generation = generation
	}
	s.generation++
	s.rebuildArena()
	return nil
}

// Generation returns the current generation counter.
func (s *DocumentStore) Generation(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation, nil
}

// Stats returns document and chunk counts plus the generation.
func (s *DocumentStore) Stats(_ context.Context) (driven.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return driven.StoreStats{
		Documents:  len(s.documents),
		Chunks:     len(s.arena),
		Generation: s.generation,
	}, nil
}

// Clear removes all documents.
func (s *DocumentStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make(map[string]*domain.Document)
	s.order = nil
	s.arena = nil
	s.generation++
	return nil
}

// Close releases resources. In-memory stores hold none.
func (s *DocumentStore) Close() error {
	return nil
}

// rebuildArena recomputes the flat scan arena. Callers hold the write
// lock. The previous slice is left untouched for live snapshots.
func (s *DocumentStore) rebuildArena() {
	arena := make([]driven.SnapshotEntry, 0, len(s.arena))
	for _, id := range s.order {
		doc := s.documents[id]
		for i := range doc.Chunks {
			arena = append(arena, driven.SnapshotEntry{
				DocumentID: doc.ID,
				SourcePath: doc.SourcePath,
				ChunkIndex: doc.Chunks[i].Position,
				Text:       doc.Chunks[i].Text,
				Embedding:  doc.Chunks[i].Embedding,
				IndexedAt:  doc.IndexedAt,
			})
		}
	}
	s.arena = arena
}

// cloneDocument deep-copies chunk slices so callers cannot alias store
// state. Embedding slices are shared: they are write-once by contract.
func cloneDocument(doc *domain.Document) *domain.Document {
	cp := *doc
	cp.Chunks = make([]domain.Chunk, len(doc.Chunks))
	copy(cp.Chunks, doc.Chunks)
	return &cp
}
