// Package lru provides a fixed-capacity, generation-aware result
// cache. Entries are keyed by normalised query text and result count;
// the least-recently-used entry is evicted when capacity is exceeded.
package lru

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
)

// DefaultCapacity bounds the cache when no explicit capacity is given.
const DefaultCapacity = 128

var _ driven.ResultCache = (*Cache)(nil)

type entry struct {
	key        string
	generation uint64
	results    []domain.QueryResult
}

// Cache is a thread-safe LRU result cache.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
	hits     uint64
	misses   uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity overrides the default entry capacity.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		capacity: DefaultCapacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeKey collapses case and whitespace so that trivially
// different spellings of the same query share an entry.
func NormalizeKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// GetOrCompute implements driven.ResultCache.
func (c *Cache) GetOrCompute(ctx context.Context, query string, k int, generation uint64, compute driven.ComputeFunc) ([]domain.QueryResult, bool, error) {
	key := fmt.Sprintf("%s|%d", NormalizeKey(query), k)

	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry)
		if ent.generation == generation {
			c.order.MoveToFront(elem)
			c.hits++
			results := ent.results
			c.mu.Unlock()
			return results, true, nil
		}
		// Stale entry from an earlier generation.
		c.order.Remove(elem)
		delete(c.entries, key)
	}
	c.misses++
	c.mu.Unlock()

	results, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		// A concurrent compute won the race; adopt its entry.
		c.order.MoveToFront(elem)
		ent := elem.Value.(*entry)
		ent.generation = generation
		ent.results = results
		return results, false, nil
	}

	elem := c.order.PushFront(&entry{key: key, generation: generation, results: results})
	c.entries[key] = elem
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
	return results, false, nil
}

// Purge implements driven.ResultCache.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// Stats implements driven.ResultCache.
func (c *Cache) Stats() driven.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return driven.CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
	}
}
