package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
	"github.com/justkidding-scripts/termrag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	seq          INTEGER NOT NULL,
	source_path  TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	format       TEXT NOT NULL,
	indexed_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	text        TEXT NOT NULL,
	embedding   BLOB,
	PRIMARY KEY (document_id, position)
);
`

// Store is the SQLite-backed document store. All reads are served from
// the in-memory mirror; the database is the durability layer written
// through on every mutation.
type Store struct {
	db   *sql.DB
	path string

	mu         sync.RWMutex
	documents  map[string]*domain.Document
	order      []string
	arena      []driven.SnapshotEntry
	generation uint64
	nextSeq    int
}

// NewStore opens (or creates) the store at the given data directory.
// If dataDir is empty, it defaults to ~/.termrag/data.
//
// When the persisted index fails its checksum, the returned store is
// valid but empty and the error wraps domain.ErrIndexCorrupted;
// callers should surface the failure and continue.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".termrag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{
		db:        db,
		path:      dbPath,
		documents: make(map[string]*domain.Document),
		nextSeq:   1,
	}

	if err := s.load(); err != nil {
		if errors.Is(err, domain.ErrIndexCorrupted) {
			logger.Warn("Persisted index failed checksum, starting empty: %v", err)
			if resetErr := s.reset(); resetErr != nil {
				db.Close()
				return nil, resetErr
			}
			return s, err
		}
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Upsert stores or replaces a document, writing through to SQLite.
func (s *Store) Upsert(ctx context.Context, doc *domain.Document) (bool, error) {
	if doc == nil || doc.ID == "" {
		return false, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.documents[doc.ID]
	if exists && existing.ContentHash == doc.ContentHash {
		return false, nil
	}

	seq := s.nextSeq
	if err := s.writeDocument(ctx, doc, seq, s.generation+1); err != nil {
		return false, err
	}

	if !exists {
		s.order = append(s.order, doc.ID)
	}
	s.nextSeq++
	s.documents[doc.ID] = cloneDocument(doc)
	s.generation++
	s.rebuildArena()
	return true, nil
}

// Get retrieves a document by id.
func (s *Store) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneDocument(doc), nil
}

// Remove deletes a document and its chunks.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}
		return s.writeMetaTx(ctx, tx, s.generation+1, s.checksumExcluding(id))
	})
	if err != nil {
		return err
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
func (s *Store) List(_ context.Context) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.DocumentSummary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, s.documents[id].Summary())
	}
	return summaries, nil
}

// Snapshot returns the current arena for lock-free scanning.
func (s *Store) Snapshot(_ context.Context) (*driven.StoreSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &driven.StoreSnapshot{
		Generation: s.generation,
		Entries:    s.arena,
	}, nil
}

// Replace swaps the entire store contents, used by import.
func (s *Store) Replace(ctx context.Context, docs []domain.Document, generation uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newGen := s.generation
	if generation > newGen {
		newGen = generation
	}
	newGen++

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
			return fmt.Errorf("clearing documents: %w", err)
		}
		for i := range docs {
			if err := s.insertDocumentTx(ctx, tx, &docs[i], i+1); err != nil {
				return err
			}
		}
		return s.writeMetaTx(ctx, tx, newGen, checksumDocs(docsInOrder(docs)))
	})
	if err != nil {
		return err
	}

	s.documents = make(map[string]*domain.Document, len(docs))
	s.order = s.order[:0]
	for i := range docs {
		doc := cloneDocument(&docs[i])
		if _, ok := s.documents[doc.ID]; !ok {
			s.order = append(s.order, doc.ID)
		}
		s.documents[doc.ID] = doc
	}
	s.generation = newGen
	s.nextSeq = len(docs) + 1
	s.rebuildArena()
	return nil
}

// Generation returns the current generation counter.
func (s *Store) Generation(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation, nil
}

// Stats returns document and chunk counts plus the generation.
func (s *Store) Stats(_ context.Context) (driven.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return driven.StoreStats{
		Documents:  len(s.documents),
		Chunks:     len(s.arena),
		Generation: s.generation,
	}, nil
}

// Clear removes all documents.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
			return fmt.Errorf("clearing documents: %w", err)
		}
		return s.writeMetaTx(ctx, tx, s.generation+1, checksumDocs(nil))
	})
	if err != nil {
		return err
	}

	s.documents = make(map[string]*domain.Document)
	s.order = nil
	s.arena = nil
	s.generation++
	return nil
}

// ==================== Persistence internals ====================

// load reads the full index into the memory mirror and verifies the
// stored checksum.
func (s *Store) load() error {
	gen, storedSum, err := s.readMeta()
	if err != nil {
		return err
	}

	rows, err := s.db.Query(`
		SELECT id, seq, source_path, content_hash, format, indexed_at
		FROM documents ORDER BY seq
	`)
	if err != nil {
		return fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc domain.Document
		var seq int
		var format, indexedAt string
		if err := rows.Scan(&doc.ID, &seq, &doc.SourcePath, &doc.ContentHash, &format, &indexedAt); err != nil {
			return fmt.Errorf("scanning document: %w", err)
		}
		if seq >= s.nextSeq {
			s.nextSeq = seq + 1
		}
		kind, err := domain.ParseFormatKind(format)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrIndexCorrupted, err)
		}
		doc.Format = kind
		ts, err := time.Parse(time.RFC3339Nano, indexedAt)
		if err != nil {
			return fmt.Errorf("%w: bad timestamp %q", domain.ErrIndexCorrupted, indexedAt)
		}
		doc.IndexedAt = ts

		s.documents[doc.ID] = &doc
		s.order = append(s.order, doc.ID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating documents: %w", err)
	}

	for _, id := range s.order {
		chunks, err := s.loadChunks(id)
		if err != nil {
			return err
		}
		s.documents[id].Chunks = chunks
	}

	s.generation = gen

	if sum := s.checksumLocked(); sum != storedSum {
		return fmt.Errorf("%w: index checksum mismatch", domain.ErrIndexCorrupted)
	}

	s.rebuildArena()
	return nil
}

func (s *Store) loadChunks(documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.Query(`
		SELECT position, text, embedding
		FROM chunks WHERE document_id = ? ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var blob []byte
		if err := rows.Scan(&chunk.Position, &chunk.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(blob)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// reset wipes all persisted and mirrored state after corruption.
func (s *Store) reset() error {
	ctx := context.Background()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
			return fmt.Errorf("resetting documents: %w", err)
		}
		return s.writeMetaTx(ctx, tx, 0, checksumDocs(nil))
	})
	if err != nil {
		return err
	}

	s.documents = make(map[string]*domain.Document)
	s.order = nil
	s.arena = nil
	s.generation = 0
	s.nextSeq = 1
	return nil
}

func (s *Store) readMeta() (uint64, string, error) {
	var genText string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'generation'").Scan(&genText)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh database.
		return 0, checksumDocs(nil), nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("reading generation: %w", err)
	}
	gen, err := strconv.ParseUint(genText, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: bad generation %q", domain.ErrIndexCorrupted, genText)
	}

	var sum string
	if err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'checksum'").Scan(&sum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", fmt.Errorf("%w: checksum missing", domain.ErrIndexCorrupted)
		}
		return 0, "", fmt.Errorf("reading checksum: %w", err)
	}
	return gen, sum, nil
}

func (s *Store) writeMetaTx(ctx context.Context, tx *sql.Tx, generation uint64, checksum string) error {
	for key, value := range map[string]string{
		"generation": strconv.FormatUint(generation, 10),
		"checksum":   checksum,
	} {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		if err != nil {
			return fmt.Errorf("writing meta %s: %w", key, err)
		}
	}
	return nil
}

// writeDocument persists a single upsert in one transaction, including
// the new generation and checksum.
func (s *Store) writeDocument(ctx context.Context, doc *domain.Document, seq int, generation uint64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.upsertDocumentTx(ctx, tx, doc, seq); err != nil {
			return err
		}
		return s.writeMetaTx(ctx, tx, generation, s.checksumWith(doc))
	})
}

func (s *Store) upsertDocumentTx(ctx context.Context, tx *sql.Tx, doc *domain.Document, seq int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, seq, source_path, content_hash, format, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_path  = excluded.source_path,
			content_hash = excluded.content_hash,
			format       = excluded.format,
			indexed_at   = excluded.indexed_at
	`, doc.ID, seq, doc.SourcePath, doc.ContentHash,
		doc.Format.String(), doc.IndexedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return s.insertChunksTx(ctx, tx, doc)
}

func (s *Store) insertDocumentTx(ctx context.Context, tx *sql.Tx, doc *domain.Document, seq int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, seq, source_path, content_hash, format, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, seq, doc.SourcePath, doc.ContentHash,
		doc.Format.String(), doc.IndexedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return s.insertChunksTx(ctx, tx, doc)
}

func (s *Store) insertChunksTx(ctx context.Context, tx *sql.Tx, doc *domain.Document) error {
	if len(doc.Chunks) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, position, text, embedding)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range doc.Chunks {
		blob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, doc.ID, chunk.Position, chunk.Text, blob); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Checksums ====================

// checksumLocked hashes the mirrored index in insertion order.
// Callers hold at least the read lock.
func (s *Store) checksumLocked() string {
	return checksumDocs(s.orderedDocs())
}

// checksumWith computes the checksum as it will be after upserting doc.
func (s *Store) checksumWith(doc *domain.Document) string {
	docs := make([]*domain.Document, 0, len(s.order)+1)
	replaced := false
	for _, id := range s.order {
		if id == doc.ID {
			docs = append(docs, doc)
			replaced = true
			continue
		}
		docs = append(docs, s.documents[id])
	}
	if !replaced {
		docs = append(docs, doc)
	}
	return checksumDocs(docs)
}

// checksumExcluding computes the checksum as it will be after removal.
func (s *Store) checksumExcluding(id string) string {
	docs := make([]*domain.Document, 0, len(s.order))
	for _, existing := range s.order {
		if existing != id {
			docs = append(docs, s.documents[existing])
		}
	}
	return checksumDocs(docs)
}

func (s *Store) orderedDocs() []*domain.Document {
	docs := make([]*domain.Document, 0, len(s.order))
	for _, id := range s.order {
		docs = append(docs, s.documents[id])
	}
	return docs
}

func docsInOrder(docs []domain.Document) []*domain.Document {
	out := make([]*domain.Document, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		if _, ok := seen[docs[i].ID]; ok {
			continue
		}
		seen[docs[i].ID] = struct{}{}
		out = append(out, &docs[i])
	}
	return out
}

// checksumDocs hashes document identity, content hash and chunk counts
// in order. Chunk payloads are covered transitively by the content
// hash, so hashing every embedding byte again is unnecessary.
func checksumDocs(docs []*domain.Document) string {
	h := sha256.New()
	for _, doc := range docs {
		fmt.Fprintf(h, "%s|%s|%d\n", doc.ID, doc.ContentHash, len(doc.Chunks))
		for _, chunk := range doc.Chunks {
			fmt.Fprintf(h, "%d|%s|", chunk.Position, chunk.Text)
			h.Write(float32SliceToBytes(chunk.Embedding))
			h.Write([]byte{'\n'})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ==================== Helpers ====================

func (s *Store) rebuildArena() {
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

func cloneDocument(doc *domain.Document) *domain.Document {
	cp := *doc
	cp.Chunks = make([]domain.Chunk, len(doc.Chunks))
	copy(cp.Chunks, doc.Chunks)
	return &cp
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
