package docstore

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures maps collection names to documents.
type Fixtures map[string][]Document

// DefaultFixtures returns the bundled sample dataset.
func DefaultFixtures() (Fixtures, error) {
	return ParseFixtures(bytes.NewReader(fixturesYAML))
}

// ParseFixtures decodes a YAML document of the form
// "collection: [ {id: ..., field: ...}, ... ]".
func ParseFixtures(r io.Reader) (Fixtures, error) {
	var f Fixtures
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixtures{}, nil
		}
		return nil, errors.Join(ErrInvalidDocument, err)
	}

	for _, docs := range f {
		for _, doc := range docs {
			if doc.ID() == "" {
				return nil, errors.Join(ErrInvalidDocument, errors.New("fixture document without string id"))
			}
		}
	}
	return f, nil
}

// Collections returns the fixture collection names in sorted order.
func (f Fixtures) Collections() []string {
	return slices.Sorted(maps.Keys(f))
}

// Seed writes fixtures into store and returns the number of documents
// written. Stores implementing Importer keep fixture ids; other stores
// assign new ids, which breaks references between fixture documents.
func Seed(ctx context.Context, store Store, f Fixtures) (int, error) {
	n := 0
	for _, collection := range f.Collections() {
		docs := f[collection]

		if imp, ok := store.(Importer); ok {
			if err := imp.Import(ctx, collection, docs); err != nil {
				return n, err
			}
			n += len(docs)
			continue
		}

		for _, doc := range docs {
			if _, err := store.Insert(ctx, collection, doc); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// NewMemoryWithFixtures creates an in-memory store preloaded with f.
func NewMemoryWithFixtures(f Fixtures) (*Memory, error) {
	m := NewMemory()
	if _, err := Seed(context.Background(), m, f); err != nil {
		return nil, err
	}
	return m, nil
}
