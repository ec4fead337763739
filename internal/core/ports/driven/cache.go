package driven

import (
	"context"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
)

// ComputeFunc produces ranked results on a cache miss.
type ComputeFunc func(ctx context.Context) ([]domain.QueryResult, error)

// ResultCache memoises recent query results keyed by normalised query
// text and result count.
//
// An entry is valid only while the store generation it was built
// against is unchanged; stale entries are recomputed in place. The
// cache is purely an optimisation layer: its absence never changes
// query results, only latency.
type ResultCache interface {
	// GetOrCompute returns the cached results for the query when
	// present and built at the given generation; otherwise it invokes
	// compute, stores the outcome and evicts the least-recently-used
	// entry if capacity is exceeded. The bool reports a cache hit.
	GetOrCompute(ctx context.Context, query string, k int, generation uint64, compute ComputeFunc) ([]domain.QueryResult, bool, error)

	// Purge drops all entries. Hit/miss counters are preserved.
	Purge()

	// Stats returns hit/miss counters and the current entry count.
	Stats() CacheStats
}

// CacheStats reports cache effectiveness for status output.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// HitRate returns hits / (hits + misses), or zero before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
