package docstore

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Store-managed document fields.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Document is a schemaless record. Values are whatever the JSON (or YAML)
// decoder produced.
type Document map[string]any

// ID returns the document id, or an empty string if it has none.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Filter selects documents whose fields equal the given values.
// A nil or empty filter selects every document in a collection.
type Filter map[string]any

// Store is a collection-oriented document store.
type Store interface {
	// Find returns the documents of a collection matching filter,
	// oldest first.
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// FindOne returns a document by id or ErrNotFound.
	FindOne(ctx context.Context, collection, id string) (Document, error)

	// Insert stores a new document and returns it with id and timestamps set.
	// Client-supplied values for store-managed fields are ignored.
	Insert(ctx context.Context, collection string, doc Document) (Document, error)

	// Update shallow-merges patch into the document and returns the result.
	// Store-managed fields in patch are ignored.
	Update(ctx context.Context, collection, id string, patch Document) (Document, error)

	// Delete removes a document or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, collection string, filter Filter) (int, error)
}

// Importer is implemented by stores that can upsert documents while keeping
// their ids. Used to seed fixture data with intact cross-references.
type Importer interface {
	Import(ctx context.Context, collection string, docs []Document) error
}

// newDocument copies doc and stamps a fresh id and creation time on the copy.
func newDocument(doc Document, now time.Time) (Document, error) {
	if doc == nil {
		return nil, ErrInvalidDocument
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("docstore: generate id: %w", err)
	}

	out := maps.Clone(doc)
	ts := timestamp(now)
	out[FieldID] = id.String()
	out[FieldCreatedAt] = ts
	out[FieldUpdatedAt] = ts
	return out, nil
}

// applyPatch returns a copy of current with patch merged over it.
func applyPatch(current, patch Document, now time.Time) Document {
	out := maps.Clone(current)
	for k, v := range patch {
		if isManaged(k) {
			continue
		}
		out[k] = v
	}
	out[FieldUpdatedAt] = timestamp(now)
	return out
}

// imported fills in missing timestamps on a document that already has an id.
func imported(doc Document, now time.Time) (Document, error) {
	if doc == nil || doc.ID() == "" {
		return nil, fmt.Errorf("%w: imported document needs a string id", ErrInvalidDocument)
	}

	out := maps.Clone(doc)
	ts := timestamp(now)
	if _, ok := out[FieldCreatedAt]; !ok {
		out[FieldCreatedAt] = ts
	}
	if _, ok := out[FieldUpdatedAt]; !ok {
		out[FieldUpdatedAt] = out[FieldCreatedAt]
	}
	return out, nil
}

// Matches reports whether doc satisfies every condition in filter.
// Scalars are compared by their formatted value so that a filter built
// from query strings ("3") matches a decoded number (3).
func Matches(doc Document, filter Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !equalValues(got, want) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if isScalar(a) && isScalar(b) {
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float32, float64, uint, uint32, uint64:
		return true
	}
	return false
}

func isManaged(field string) bool {
	return field == FieldID || field == FieldCreatedAt || field == FieldUpdatedAt
}

// timeLayout is fixed-width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func validate(collection, id string) error {
	if collection == "" {
		return ErrEmptyCollection
	}
	if id == "" {
		return ErrEmptyID
	}
	return nil
}
