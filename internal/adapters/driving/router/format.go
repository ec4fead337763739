package router

import (
	"fmt"
	"strings"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driving"
)

// FormatReport renders an ingest report as a one-to-four line block.
func FormatReport(report *driving.IngestReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Indexed %d documents", report.Indexed)
	if report.Skipped > 0 {
		fmt.Fprintf(&b, ", %d unchanged", report.Skipped)
	}
	if report.Unindexable > 0 {
		fmt.Fprintf(&b, ", %d unindexable", report.Unindexable)
	}
	if report.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", report.Failed)
		for _, failure := range report.Failures {
			fmt.Fprintf(&b, "\n  %s: %v", failure.SourcePath, failure.Err)
		}
	}
	return b.String()
}

// FormatResults renders ranked search results.
func FormatResults(results []domain.QueryResult) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s#%d (%.4f)\n    %s", i+1, r.SourcePath, r.ChunkIndex, r.Score, r.Snippet)
	}
	return b.String()
}

// FormatAnswer renders an answer with its cited sources.
func FormatAnswer(answer *domain.Answer) string {
	if len(answer.Sources) == 0 {
		return answer.Text
	}
	return fmt.Sprintf("%s\n\nSources: %s", answer.Text, strings.Join(answer.Sources, ", "))
}

// FormatStatus renders the engine status block.
func FormatStatus(status *driving.EngineStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Documents:  %d\n", status.Documents)
	fmt.Fprintf(&b, "Chunks:     %d\n", status.Chunks)
	fmt.Fprintf(&b, "Generation: %d\n", status.Generation)
	fmt.Fprintf(&b, "Cache:      %d entries, %d hits, %d misses (%.0f%% hit rate)",
		status.CacheEntries, status.CacheHits, status.CacheMisses, status.CacheHitRate*100)
	return b.String()
}

// FormatList renders document summaries in insertion order.
func FormatList(summaries []domain.DocumentSummary) string {
	if len(summaries) == 0 {
		return "No documents indexed."
	}
	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %-7s  %3d chunks  %s  %s",
			s.ID, s.Format, s.ChunkCount, s.IndexedAt.Format("2006-01-02 15:04"), s.SourcePath)
	}
	return b.String()
}
