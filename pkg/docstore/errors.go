package docstore

import "errors"

// Sentinel errors for document store operations.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrUnavailable is joined with the backend error when the store cannot be
	// reached. Readers may fall back to a secondary source on this error.
	ErrUnavailable = errors.New("docstore: backend unavailable")

	// ErrInvalidDocument is returned for nil documents or documents that cannot
	// be encoded.
	ErrInvalidDocument = errors.New("docstore: invalid document")

	// ErrEmptyCollection is returned when no collection name is given.
	ErrEmptyCollection = errors.New("docstore: empty collection name")

	// ErrEmptyID is returned when no document id is given.
	ErrEmptyID = errors.New("docstore: empty document id")
)
