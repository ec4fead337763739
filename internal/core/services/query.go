package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driving"
	"github.com/justkidding-scripts/termrag/internal/logger"
)

const (
	// DefaultTopK is the result count used when the caller passes k <= 0.
	DefaultTopK = 5

	// snippetLength bounds result snippets, cut at a word boundary.
	snippetLength = 160

	// answerSentences caps the extractive answer size.
	answerSentences = 2
)

var _ driving.QueryService = (*Query)(nil)

// Query implements similarity search and its derived operations.
type Query struct {
	store    driven.DocumentStore
	embedder driven.Embedder
	cache    driven.ResultCache
}

// NewQuery creates the query service.
func NewQuery(store driven.DocumentStore, embedder driven.Embedder, cache driven.ResultCache) *Query {
	return &Query{store: store, embedder: embedder, cache: cache}
}

// Search embeds the query and ranks every indexed chunk by cosine
// similarity. Results are cached per store generation.
func (s *Query) Search(ctx context.Context, query string, k int) ([]domain.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.QueryResult{}, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	results, hit, err := s.cache.GetOrCompute(ctx, query, k, snap.Generation, func(ctx context.Context) ([]domain.QueryResult, error) {
		return s.scan(ctx, snap, query, k)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		logger.Debug("Cache hit for %q (k=%d, generation %d)", query, k, snap.Generation)
	}
	return results, nil
}

// scan ranks the snapshot arena against the query embedding. Vectors
// are L2-normalised, so the dot product is the cosine similarity.
func (s *Query) scan(ctx context.Context, snap *driven.StoreSnapshot, query string, k int) ([]domain.QueryResult, error) {
	queryVec := s.embedder.Embed(query)

	indexedAt := make(map[string]time.Time)
	results := make([]domain.QueryResult, 0, len(snap.Entries))
	for i := range snap.Entries {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		entry := &snap.Entries[i]
		score := dot(queryVec, entry.Embedding)
		if score <= 0 {
			continue
		}
		indexedAt[entry.DocumentID] = entry.IndexedAt
		results = append(results, domain.QueryResult{
			DocumentID: entry.DocumentID,
			SourcePath: entry.SourcePath,
			ChunkIndex: entry.ChunkIndex,
			Score:      score,
			Snippet:    makeSnippet(entry.Text),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ta, tb := indexedAt[a.DocumentID], indexedAt[b.DocumentID]
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.ChunkIndex < b.ChunkIndex
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Ask answers a question by search plus extractive summarisation of
// the best hit: the sentences sharing the most terms with the question
// are returned in source order, with every contributing document id
// cited.
func (s *Query) Ask(ctx context.Context, question string, k int) (*domain.Answer, error) {
	results, err := s.Search(ctx, question, k)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &domain.Answer{Text: "No relevant documents found."}, nil
	}

	top := results[0]
	text := top.Snippet
	if doc, err := s.store.Get(ctx, top.DocumentID); err == nil {
		for i := range doc.Chunks {
			if doc.Chunks[i].Position == top.ChunkIndex {
				text = doc.Chunks[i].Text
				break
			}
		}
	}

	answer := extractSentences(text, question, answerSentences)
	if answer == "" {
		answer = makeSnippet(text)
	}

	sources := make([]string, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if _, ok := seen[r.DocumentID]; ok {
			continue
		}
		seen[r.DocumentID] = struct{}{}
		sources = append(sources, r.DocumentID)
	}

	return &domain.Answer{Text: answer, Sources: sources}, nil
}

// Summarize concatenates the top-k snippets for a topic, attributed to
// their source paths.
func (s *Query) Summarize(ctx context.Context, topic string, k int) (string, error) {
	results, err := s.Search(ctx, topic, k)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No relevant documents found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summary for %q:\n", strings.TrimSpace(topic))
	for _, r := range results {
		fmt.Fprintf(&b, "- [%s] %s\n", r.SourcePath, r.Snippet)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// dot computes the inner product of two equally sized vectors in
// float64 to keep the accumulation stable.
func dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// makeSnippet truncates chunk text to a display snippet, cutting at a
// word boundary.
func makeSnippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= snippetLength {
		return text
	}
	cut := strings.LastIndexByte(text[:snippetLength], ' ')
	if cut <= 0 {
		cut = snippetLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
	}
	return text[:cut] + "..."
}

// extractSentences returns up to max sentences from text, chosen by
// overlap with the question's terms and emitted in original order.
func extractSentences(text, question string, max int) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) <= max {
		return strings.Join(sentences, " ")
	}

	terms := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(question)) {
		terms[strings.Trim(tok, ".,;:!?\"'()")] = struct{}{}
	}

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, len(sentences))
	for i, sentence := range sentences {
		sc := scored{index: i}
		for _, tok := range strings.Fields(strings.ToLower(sentence)) {
			if _, ok := terms[strings.Trim(tok, ".,;:!?\"'()")]; ok {
				sc.score++
			}
		}
		ranked[i] = sc
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	picked := ranked[:max]
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	parts := make([]string, len(picked))
	for i, p := range picked {
		parts[i] = sentences[p.index]
	}
	return strings.Join(parts, " ")
}

// splitSentences is a lightweight splitter on terminal punctuation
// followed by whitespace. Newlines also terminate a sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		boundary := r == '\n' ||
			((r == '.' || r == '!' || r == '?') && (i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n'))
		if boundary {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
