package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
)

func testDoc(id, path, hash string, chunkTexts ...string) *domain.Document {
	chunks := make([]domain.Chunk, len(chunkTexts))
	for i, text := range chunkTexts {
		chunks[i] = domain.Chunk{
			Text:      text,
			Position:  i,
			Embedding: []float32{float32(i), 1, 0},
		}
	}
	return &domain.Document{
		ID:          id,
		SourcePath:  path,
		ContentHash: hash,
		Format:      domain.FormatProse,
		Chunks:      chunks,
		IndexedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUpsert_NewDocumentBumpsGeneration(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	changed, err := s.Upsert(ctx, testDoc("d1", "/a.txt", "h1", "hello"))

	require.NoError(t, err)
	assert.True(t, changed)

	gen, err := s.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
}

func TestUpsert_UnchangedHashIsNoOp(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	doc := testDoc("d1", "/a.txt", "h1", "hello")
	_, err := s.Upsert(ctx, doc)
	require.NoError(t, err)
	genBefore, _ := s.Generation(ctx)

	// Same id, same hash: no-op, IndexedAt untouched.
	later := testDoc("d1", "/a.txt", "h1", "hello")
	later.IndexedAt = time.Now()
	changed, err := s.Upsert(ctx, later)

	require.NoError(t, err)
	assert.False(t, changed)

	genAfter, _ := s.Generation(ctx)
	assert.Equal(t, genBefore, genAfter)

	stored, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, doc.IndexedAt, stored.IndexedAt)
}

func TestUpsert_ChangedHashReplacesChunks(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, err := s.Upsert(ctx, testDoc("d1", "/a.txt", "h1", "old first", "old second"))
	require.NoError(t, err)

	changed, err := s.Upsert(ctx, testDoc("d1", "/a.txt", "h2", "new only"))
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, stored.Chunks, 1)
	assert.Equal(t, "new only", stored.Chunks[0].Text)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 1)
}

func TestUpsert_InvalidInput(t *testing.T) {
	s := NewDocumentStore()

	_, err := s.Upsert(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Upsert(context.Background(), &domain.Document{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet_NotFound(t *testing.T) {
	s := NewDocumentStore()

	_, err := s.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove_BumpsGeneration(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, err := s.Upsert(ctx, testDoc("d1", "/a.txt", "h1", "hello"))
	require.NoError(t, err)
	genBefore, _ := s.Generation(ctx)

	require.NoError(t, s.Remove(ctx, "d1"))

	genAfter, _ := s.Generation(ctx)
	assert.Greater(t, genAfter, genBefore)

	_, err = s.Get(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove_Missing(t *testing.T) {
	s := NewDocumentStore()

	assert.ErrorIs(t, s.Remove(context.Background(), "nope"), domain.ErrNotFound)
}

func TestList_InsertionOrder(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		_, err := s.Upsert(ctx, testDoc(id, "/"+id, "h-"+id, "text "+id))
		require.NoError(t, err)
	}

	summaries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "c", summaries[0].ID)
	assert.Equal(t, "a", summaries[1].ID)
	assert.Equal(t, "b", summaries[2].ID)
}

func TestList_UpdateKeepsPosition(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, _ = s.Upsert(ctx, testDoc("first", "/1", "h1", "x"))
	_, _ = s.Upsert(ctx, testDoc("second", "/2", "h2", "y"))
	_, _ = s.Upsert(ctx, testDoc("first", "/1", "h1-changed", "z"))

	summaries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "first", summaries[0].ID)
}

func TestSnapshot_ImmutableUnderMutation(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, err := s.Upsert(ctx, testDoc("d1", "/a.txt", "h1", "one", "two"))
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 2)

	// Mutations after the snapshot must not show through it.
	_, err = s.Upsert(ctx, testDoc("d2", "/b.txt", "h2", "three"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, "d1"))

	assert.Len(t, snap.Entries, 2)
	assert.Equal(t, "d1", snap.Entries[0].DocumentID)

	fresh, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh.Entries, 1)
	assert.Greater(t, fresh.Generation, snap.Generation)
}

func TestSnapshot_ArenaOrder(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, _ = s.Upsert(ctx, testDoc("d1", "/a", "h1", "a0", "a1"))
	_, _ = s.Upsert(ctx, testDoc("d2", "/b", "h2", "b0"))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 3)
	assert.Equal(t, "a0", snap.Entries[0].Text)
	assert.Equal(t, "a1", snap.Entries[1].Text)
	assert.Equal(t, "b0", snap.Entries[2].Text)
	assert.Equal(t, 0, snap.Entries[2].ChunkIndex)
}

func TestReplace_SwapsContentsAndAdvancesGeneration(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, _ = s.Upsert(ctx, testDoc("old", "/old", "h0", "gone"))

	docs := []domain.Document{
		*testDoc("n1", "/n1", "h1", "one"),
		*testDoc("n2", "/n2", "h2", "two"),
	}
	require.NoError(t, s.Replace(ctx, docs, 40))

	gen, _ := s.Generation(ctx)
	assert.Greater(t, gen, uint64(40))

	summaries, _ := s.List(ctx)
	require.Len(t, summaries, 2)
	assert.Equal(t, "n1", summaries[0].ID)

	_, err := s.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClear_EmptiesAndBumps(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, _ = s.Upsert(ctx, testDoc("d1", "/a", "h1", "x"))
	genBefore, _ := s.Generation(ctx)

	require.NoError(t, s.Clear(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Chunks)
	assert.Greater(t, stats.Generation, genBefore)
}

func TestStats(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, _ = s.Upsert(ctx, testDoc("d1", "/a", "h1", "one", "two"))
	_, _ = s.Upsert(ctx, testDoc("d2", "/b", "h2", "three"))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 3, stats.Chunks)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, _ = s.Upsert(ctx, testDoc("d1", "/a", "h1", "original"))

	got, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	got.Chunks[0].Text = "mutated"

	again, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Chunks[0].Text)
}
