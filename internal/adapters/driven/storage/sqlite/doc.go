// Package sqlite provides the durable DocumentStore adapter.
//
// Documents, chunks and embeddings persist in a single SQLite database
// (pure-Go driver, WAL mode). A meta table carries the schema version,
// the generation counter and a content checksum; a checksum mismatch
// at open time means the index is corrupted, in which case the store
// resets to empty and surfaces domain.ErrIndexCorrupted instead of
// serving partial data.
//
// The full index is mirrored in memory as a flat chunk arena, rebuilt
// on each mutation, so similarity scans read a snapshot without
// touching the database or holding locks.
package sqlite
