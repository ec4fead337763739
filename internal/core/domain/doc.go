// Package domain defines the core business entities for termrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Document: An indexed document with its chunks and embeddings
//   - Chunk: A bounded span of normalised text with its vector
//   - RawSource: Opaque bytes read from a source path
//   - FormatKind: Detected content category
//   - QueryResult: A single ranked retrieval hit
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, uuid
//   - Cannot Import: Any other internal/ package
package domain
