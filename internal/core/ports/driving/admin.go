package driving

import (
	"context"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
)

// AdminService covers engine housekeeping: status, listing and the
// export/import/clear lifecycle.
type AdminService interface {
	// Status reports corpus size, cache effectiveness and generation.
	Status(ctx context.Context) (*EngineStatus, error)

	// List returns indexed document summaries in insertion order.
	List(ctx context.Context) ([]domain.DocumentSummary, error)

	// Export writes the serialized store artifact to the given path.
	Export(ctx context.Context, dest string) error

	// Import replaces the store with the artifact at the given path.
	// A checksum mismatch empties the store and reports
	// domain.ErrIndexCorrupted.
	Import(ctx context.Context, src string) error

	// Clear resets the store and cache to empty.
	Clear(ctx context.Context) error
}

// EngineStatus is the status command payload.
type EngineStatus struct {
	Documents    int
	Chunks       int
	Generation   uint64
	CacheHits    uint64
	CacheMisses  uint64
	CacheEntries int
	CacheHitRate float64
}
