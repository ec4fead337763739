package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justkidding-scripts/termrag/internal/adapters/driven/cache/lru"
	"github.com/justkidding-scripts/termrag/internal/adapters/driven/storage/memory"
	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/embedding/hashing"
	"github.com/justkidding-scripts/termrag/internal/normalisers"
	"github.com/justkidding-scripts/termrag/internal/postprocessors/chunker"
)

func newTestIngest(t *testing.T) (*Ingest, *memory.DocumentStore) {
	t.Helper()
	store := memory.NewDocumentStore()
	ingest := NewIngest(
		store,
		normalisers.NewClassifier(),
		normalisers.NewRegistry(),
		chunker.New(),
		hashing.New(),
	)
	return ingest, store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAddPath_SingleFile(t *testing.T) {
	ingest, store := newTestIngest(t)
	ctx := context.Background()

	path := writeFile(t, t.TempDir(), "notes.txt", "the quick brown fox jumps over the lazy dog")

	report, err := ingest.AddPath(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Indexed)
	assert.Zero(t, report.Failed)

	doc, err := store.Get(ctx, domain.DocumentID(path))
	require.NoError(t, err)
	assert.Equal(t, domain.FormatProse, doc.Format)
	require.NotEmpty(t, doc.Chunks)
	assert.Len(t, doc.Chunks[0].Embedding, hashing.Dimensions)
}

func TestAddPath_UnchangedFileIsSkipped(t *testing.T) {
	ingest, store := newTestIngest(t)
	ctx := context.Background()

	path := writeFile(t, t.TempDir(), "notes.txt", "stable content")

	_, err := ingest.AddPath(ctx, path)
	require.NoError(t, err)

	first, err := store.Get(ctx, domain.DocumentID(path))
	require.NoError(t, err)
	genBefore, err := store.Generation(ctx)
	require.NoError(t, err)

	report, err := ingest.AddPath(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, report.Indexed)
	assert.Equal(t, 1, report.Skipped)

	second, err := store.Get(ctx, domain.DocumentID(path))
	require.NoError(t, err)
	assert.True(t, first.IndexedAt.Equal(second.IndexedAt))

	genAfter, err := store.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, genBefore, genAfter)
}

func TestAddPath_ChangedFileIsReembedded(t *testing.T) {
	ingest, store := newTestIngest(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "original content")
	_, err := ingest.AddPath(ctx, path)
	require.NoError(t, err)

	writeFile(t, dir, "notes.txt", "rewritten content entirely")
	report, err := ingest.AddPath(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Indexed)

	doc, err := store.Get(ctx, domain.DocumentID(path))
	require.NoError(t, err)
	assert.Equal(t, domain.HashContent([]byte("rewritten content entirely")), doc.ContentHash)
}

func TestAddPath_Directory(t *testing.T) {
	ingest, _ := newTestIngest(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha notes")
	writeFile(t, dir, "sub/b.go", "package main\n\nfunc main() {}\n")
	writeFile(t, dir, ".hidden/c.txt", "should be skipped")

	report, err := ingest.AddPath(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Indexed)
	assert.Zero(t, report.Failed)
}

func TestAddPath_MissingPath(t *testing.T) {
	ingest, _ := newTestIngest(t)

	_, err := ingest.AddPath(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, domain.ErrUnreadableSource)
}

func TestAddPath_BinaryFileIsUnindexable(t *testing.T) {
	ingest, store := newTestIngest(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0xff, 0xfe}, 0644))

	report, err := ingest.AddPath(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Unindexable)

	doc, err := store.Get(ctx, domain.DocumentID(path))
	require.NoError(t, err)
	assert.Equal(t, domain.FormatUnknown, doc.Format)
	assert.Empty(t, doc.Chunks)
}

func TestAddText(t *testing.T) {
	ingest, store := newTestIngest(t)
	ctx := context.Background()

	doc, err := ingest.AddText(ctx, "t1", "the quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, "text://t1", doc.SourcePath)
	require.NotEmpty(t, doc.Chunks)

	stored, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ContentHash, stored.ContentHash)
}

func TestAddText_EmptyName(t *testing.T) {
	ingest, _ := newTestIngest(t)

	_, err := ingest.AddText(context.Background(), "  ", "content")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddText_SameNameNewContentReplaces(t *testing.T) {
	ingest, store := newTestIngest(t)
	ctx := context.Background()

	first, err := ingest.AddText(ctx, "t1", "first version")
	require.NoError(t, err)
	second, err := ingest.AddText(ctx, "t1", "second version")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)

	stored, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HashContent([]byte("second version")), stored.ContentHash)
}

func TestRemove_ByNamePathAndID(t *testing.T) {
	ingest, _ := newTestIngest(t)
	ctx := context.Background()

	doc, err := ingest.AddText(ctx, "t1", "removable content")
	require.NoError(t, err)

	// By bare text name.
	require.NoError(t, ingest.Remove(ctx, "t1"))

	_, err = ingest.AddText(ctx, "t2", "removable content two")
	require.NoError(t, err)

	// By full source path.
	require.NoError(t, ingest.Remove(ctx, "text://t2"))

	doc, err = ingest.AddText(ctx, "t3", "removable content three")
	require.NoError(t, err)

	// By id.
	require.NoError(t, ingest.Remove(ctx, doc.ID))

	assert.ErrorIs(t, ingest.Remove(ctx, "t1"), domain.ErrNotFound)
}

func TestIngestFeedsSearch(t *testing.T) {
	ingest, store := newTestIngest(t)
	ctx := context.Background()

	_, err := ingest.AddText(ctx, "t1", "the quick brown fox")
	require.NoError(t, err)
	_, err = ingest.AddText(ctx, "t2", "databases store rows in tables")
	require.NoError(t, err)

	query := NewQuery(store, hashing.New(), lru.New())
	results, err := query.Search(ctx, "quick fox", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "text://t1", results[0].SourcePath)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestAddPath_IndexedAtUsesClock(t *testing.T) {
	ingest, store := newTestIngest(t)
	ctx := context.Background()

	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	ingest.now = func() time.Time { return fixed }

	doc, err := ingest.AddText(ctx, "t1", "clocked content")
	require.NoError(t, err)
	assert.True(t, fixed.Equal(doc.IndexedAt))

	stored, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, fixed.Equal(stored.IndexedAt))
}
