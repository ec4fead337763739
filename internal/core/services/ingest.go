package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driving"
	"github.com/justkidding-scripts/termrag/internal/logger"
)

// TextSourceScheme prefixes the logical source path of documents added
// as literal text rather than files.
const TextSourceScheme = "text://"

// NormaliserRegistry resolves the normaliser for a detected format.
type NormaliserRegistry interface {
	ForKind(kind domain.FormatKind) (driven.Normaliser, bool)
}

var _ driving.IngestService = (*Ingest)(nil)

// Ingest implements document ingestion: read, classify, normalise,
// chunk, embed, store.
type Ingest struct {
	store       driven.DocumentStore
	classifier  driven.Classifier
	normalisers NormaliserRegistry
	chunker     driven.Chunker
	embedder    driven.Embedder
	now         func() time.Time
}

// NewIngest creates the ingest service.
func NewIngest(
	store driven.DocumentStore,
	classifier driven.Classifier,
	normalisers NormaliserRegistry,
	chunker driven.Chunker,
	embedder driven.Embedder,
) *Ingest {
	return &Ingest{
		store:       store,
		classifier:  classifier,
		normalisers: normalisers,
		chunker:     chunker,
		embedder:    embedder,
		now:         time.Now,
	}
}

// AddPath ingests a single file, or every regular file under a
// directory tree. Hidden directories are skipped. Individual file
// failures are recorded in the report without aborting the rest.
func (s *Ingest) AddPath(ctx context.Context, path string) (*driving.IngestReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableSource, err)
	}

	report := &driving.IngestReport{}
	if !info.IsDir() {
		s.ingestFile(ctx, path, report)
		return report, nil
	}

	logger.Section("Indexing " + path)
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, driving.IngestFailure{
				SourcePath: p,
				Err:        fmt.Errorf("%w: %v", domain.ErrUnreadableSource, err),
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.ingestFile(ctx, p, report)
		return nil
	})
	if walkErr != nil {
		return report, walkErr
	}
	return report, nil
}

func (s *Ingest) ingestFile(ctx context.Context, path string, report *driving.IngestReport) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		report.Failed++
		report.Failures = append(report.Failures, driving.IngestFailure{
			SourcePath: path,
			Err:        fmt.Errorf("%w: %v", domain.ErrUnreadableSource, err),
		})
		return
	}

	doc, err := s.buildDocument(ctx, path, data)
	if err != nil {
		report.Failed++
		report.Failures = append(report.Failures, driving.IngestFailure{SourcePath: path, Err: err})
		return
	}

	changed, err := s.store.Upsert(ctx, doc)
	if err != nil {
		report.Failed++
		report.Failures = append(report.Failures, driving.IngestFailure{SourcePath: path, Err: err})
		return
	}
	switch {
	case !changed:
		report.Skipped++
	case len(doc.Chunks) == 0:
		logger.Debug("Recorded %s as unindexable", path)
		report.Unindexable++
	default:
		logger.Debug("Indexed %s (%d chunks)", path, len(doc.Chunks))
		report.Indexed++
	}
}

// AddText ingests literal text under a logical source name. The stored
// source path is "text://<name>" so text documents never collide with
// file paths.
func (s *Ingest) AddText(ctx context.Context, name, content string) (*domain.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}

	sourcePath := TextSourceScheme + name
	doc, err := s.buildDocument(ctx, sourcePath, []byte(content))
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Upsert(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Remove deletes a document by id or by source path. Text documents
// can also be removed by bare name.
func (s *Ingest) Remove(ctx context.Context, idOrPath string) error {
	err := s.store.Remove(ctx, idOrPath)
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := s.store.Remove(ctx, domain.DocumentID(idOrPath)); !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.store.Remove(ctx, domain.DocumentID(TextSourceScheme+idOrPath))
}

// buildDocument runs the full pipeline for one source: classify,
// normalise, chunk, embed. Unknown (binary) content produces a
// document with zero chunks.
func (s *Ingest) buildDocument(ctx context.Context, sourcePath string, data []byte) (*domain.Document, error) {
	doc := &domain.Document{
		ID:          domain.DocumentID(sourcePath),
		SourcePath:  sourcePath,
		ContentHash: domain.HashContent(data),
		IndexedAt:   s.now().UTC(),
	}

	// Unchanged content: return the existing document so the upsert is
	// a no-op and IndexedAt is preserved.
	if existing, err := s.store.Get(ctx, doc.ID); err == nil && existing.ContentHash == doc.ContentHash {
		return existing, nil
	}

	kind := s.classifier.Detect(sourcePath, data)
	doc.Format = kind
	if kind == domain.FormatUnknown {
		return doc, nil
	}

	normaliser, ok := s.normalisers.ForKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrUnsupportedFormat, kind)
	}
	text, err := normaliser.Normalise(ctx, &domain.RawSource{SourcePath: sourcePath, Data: data})
	if err != nil {
		return nil, err
	}

	spans := s.chunker.Split(text)
	if len(spans) == 0 {
		return doc, nil
	}

	embeddings := s.embedder.EmbedBatch(spans)
	doc.Chunks = make([]domain.Chunk, len(spans))
	for i, span := range spans {
		doc.Chunks[i] = domain.Chunk{
			Text:      span,
			Position:  i,
			Embedding: embeddings[i],
		}
	}
	return doc, nil
}
