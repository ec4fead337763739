// Package hashing provides a deterministic feature-hashing embedder.
//
// Text is tokenized into terms, each term is weighted (programming
// keywords and identifiers above generic prose, see weights.go), hashed
// into one of a fixed number of buckets, and the resulting vector is
// L2-normalised so cosine similarity and dot product coincide.
//
// The scheme trades semantic precision for speed, determinism and zero
// external dependency: retrieval only needs relative ranking. Hash
// collisions are tolerated by design.
package hashing

import (
	"hash/fnv"
	"math"
	"runtime"
	"strings"
	"sync"
	"unicode"

	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
)

// Dimensions is the system-wide embedding vector size.
const Dimensions = 256

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// Embedder generates fixed-length vectors via feature hashing.
// Embed is a pure function: the same text always yields a bit-identical
// vector.
type Embedder struct {
	dims int
}

// Option configures the embedder.
type Option func(*Embedder)

// WithDimensions overrides the vector size. Intended for tests; the
// stored corpus and every query must use the same value.
func WithDimensions(d int) Option {
	return func(e *Embedder) {
		if d > 0 {
			e.dims = d
		}
	}
}

// New creates a feature-hashing embedder.
func New(opts ...Option) *Embedder {
	e := &Embedder{dims: Dimensions}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// Embed generates the embedding for a single text.
func (e *Embedder) Embed(text string) []float32 {
	acc := make([]float64, e.dims)

	for _, tok := range tokenize(text) {
		w := termWeight(tok)
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.ToLower(tok)))
		acc[h.Sum32()%uint32(e.dims)] += w
	}

	// L2-normalise in float64, then narrow.
	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, e.dims)
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i, v := range acc {
			vec[i] = float32(v / norm)
		}
	}
	return vec
}

// EmbedBatch embeds texts in parallel. Each text embeds independently
// and results are placed by input index, so the output is identical
// regardless of goroutine scheduling.
func (e *Embedder) EmbedBatch(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(texts) {
		workers = len(texts)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				out[i] = e.Embed(texts[i])
			}
		}()
	}
	for i := range texts {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return out
}

// tokenize splits text into terms of letters, digits and underscores.
// Original casing is preserved for identifier detection; hashing
// lowercases separately.
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}
