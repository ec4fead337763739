// Package chunker provides a boundary-aware text chunking processor.
//
// Content is split into ordered spans bounded by a maximum length.
// Splits prefer paragraph breaks, then line breaks, then word
// boundaries - never the middle of a token. Chunk order follows
// document order, which retrieval relies on for deterministic
// tie-breaks.
package chunker

import (
	"strings"

	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
)

// DefaultMaxChunkSize is the default maximum characters per chunk.
const DefaultMaxChunkSize = 1000

// Ensure Splitter implements the interface.
var _ driven.Chunker = (*Splitter)(nil)

// Splitter splits normalised content into bounded chunks.
type Splitter struct {
	maxSize int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithMaxChunkSize sets the maximum chunk size in characters.
func WithMaxChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{maxSize: DefaultMaxChunkSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split returns the ordered chunk texts for the content.
// Empty or blank content produces no chunks.
func (s *Splitter) Split(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if len(content) <= s.maxSize {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			chunks = append(chunks, text)
		}
		current.Reset()
	}

	for _, para := range strings.Split(content, "\n\n") {
		if para = strings.TrimSpace(para); para == "" {
			continue
		}

		// Paragraph fits into the running chunk.
		if current.Len()+len(para)+2 <= s.maxSize {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
			continue
		}
		flush()

		if len(para) <= s.maxSize {
			current.WriteString(para)
			continue
		}

		// Paragraph alone exceeds the bound: fall back to lines.
		for _, piece := range s.splitLines(para) {
			if current.Len()+len(piece)+1 > s.maxSize {
				flush()
			}
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(piece)
		}
		flush()
	}
	flush()

	return chunks
}

// splitLines breaks an oversized paragraph at line breaks, splitting
// any single line that still exceeds the bound at word boundaries.
func (s *Splitter) splitLines(para string) []string {
	var pieces []string
	for _, line := range strings.Split(para, "\n") {
		if len(line) <= s.maxSize {
			pieces = append(pieces, line)
			continue
		}
		pieces = append(pieces, s.splitWords(line)...)
	}
	return pieces
}

// splitWords packs words into spans of at most maxSize characters.
// A single word longer than the bound becomes its own span rather than
// being cut mid-token.
func (s *Splitter) splitWords(line string) []string {
	var pieces []string
	var current strings.Builder

	for _, word := range strings.Fields(line) {
		if current.Len() > 0 && current.Len()+len(word)+1 > s.maxSize {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}
