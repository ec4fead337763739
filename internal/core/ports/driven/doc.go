// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentStore: durable document, chunk and embedding persistence
//   - Embedder: deterministic text-to-vector generation
//   - Normaliser: format-specific content normalisation
//   - Chunker: boundary-aware chunk splitting
//   - ResultCache: memoisation of ranked query results
//   - ConfigStore: application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
