package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/justkidding-scripts/termrag/internal/adapters/driven/storage/artifact"
	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driving"
	"github.com/justkidding-scripts/termrag/internal/logger"
)

var _ driving.AdminService = (*Admin)(nil)

// Admin implements status reporting and the export/import/clear
// lifecycle over the backing store.
type Admin struct {
	store driven.DocumentStore
	cache driven.ResultCache
}

// NewAdmin creates the admin service.
func NewAdmin(store driven.DocumentStore, cache driven.ResultCache) *Admin {
	return &Admin{store: store, cache: cache}
}

// Status reports corpus size, generation and cache effectiveness.
func (s *Admin) Status(ctx context.Context) (*driving.EngineStatus, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	cacheStats := s.cache.Stats()
	return &driving.EngineStatus{
		Documents:    stats.Documents,
		Chunks:       stats.Chunks,
		Generation:   stats.Generation,
		CacheHits:    cacheStats.Hits,
		CacheMisses:  cacheStats.Misses,
		CacheEntries: cacheStats.Entries,
		CacheHitRate: cacheStats.HitRate(),
	}, nil
}

// List returns indexed document summaries in insertion order.
func (s *Admin) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	return s.store.List(ctx)
}

// Export serialises the whole store into a single checksummed artifact
// at dest. The file is written atomically via a temp file rename.
func (s *Admin) Export(ctx context.Context, dest string) error {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return err
	}
	summaries, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	docs := make([]domain.Document, 0, len(summaries))
	for _, summary := range summaries {
		doc, err := s.store.Get(ctx, summary.ID)
		if err != nil {
			return err
		}
		docs = append(docs, *doc)
	}

	data, err := artifact.Encode(docs, snap.Generation)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalising export: %w", err)
	}

	logger.Info("Exported %d documents to %s", len(docs), dest)
	return nil
}

// Import replaces the store contents with the artifact at src. A
// checksum or format failure empties the store, purges the cache and
// reports domain.ErrIndexCorrupted.
func (s *Admin) Import(ctx context.Context, src string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnreadableSource, err)
	}

	docs, generation, err := artifact.Decode(data)
	if err != nil {
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			logger.Warn("Clearing store after corrupt import failed: %v", clearErr)
		}
		s.cache.Purge()
		return err
	}

	if err := s.store.Replace(ctx, docs, generation); err != nil {
		return err
	}
	s.cache.Purge()
	logger.Info("Imported %d documents from %s", len(docs), src)
	return nil
}

// Clear resets the store and cache to empty.
func (s *Admin) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.cache.Purge()
	return nil
}
