package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnreadableSource indicates a source path could not be opened
	// or read. Only the affected document's ingestion is aborted.
	ErrUnreadableSource = errors.New("unreadable source")

	// ErrUnsupportedFormat indicates content that cannot be normalised
	// (e.g. binary data). The document is still recorded with an empty
	// chunk list so listings and counts stay accurate.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrIndexCorrupted indicates a persisted index or artifact failed
	// its checksum on load. The store starts empty; the failure is
	// surfaced, never silently masked.
	ErrIndexCorrupted = errors.New("index corrupted")

	// ErrUnknownCommand indicates the router received a verb it does
	// not recognise. No state is mutated.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrEmptyQuery indicates a blank query string. Retrieval treats it
	// as an empty ranked list rather than a failure; the sentinel
	// exists for callers that want to distinguish the case.
	ErrEmptyQuery = errors.New("empty query")
)
