package docstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process Store. It keeps documents in insertion order and
// hands out copies, so callers may modify what they receive.
//
// Memory backs tests and serves as the fallback source when the primary
// store is unreachable.
type Memory struct {
	docs  map[string]map[string]Document
	order map[string][]string
	now   func() time.Time
	mu    sync.RWMutex
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:  make(map[string]map[string]Document),
		order: make(map[string][]string),
		now:   time.Now,
	}
}

// Find returns matching documents in insertion order.
func (m *Memory) Find(_ context.Context, collection string, filter Filter) ([]Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Document, 0, len(m.order[collection]))
	for _, id := range m.order[collection] {
		doc := m.docs[collection][id]
		if Matches(doc, filter) {
			out = append(out, maps.Clone(doc))
		}
	}
	return out, nil
}

// FindOne returns a copy of the document with the given id.
func (m *Memory) FindOne(_ context.Context, collection, id string) (Document, error) {
	if err := validate(collection, id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(doc), nil
}

// Insert adds a new document.
func (m *Memory) Insert(_ context.Context, collection string, doc Document) (Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	created, err := newDocument(doc, m.now())
	if err != nil {
		return nil, err
	}
	m.put(collection, created)
	return maps.Clone(created), nil
}

// Update merges patch into an existing document.
func (m *Memory) Update(_ context.Context, collection, id string, patch Document) (Document, error) {
	if err := validate(collection, id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	updated := applyPatch(current, patch, m.now())
	m.docs[collection][id] = updated
	return maps.Clone(updated), nil
}

// Delete removes a document.
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	if err := validate(collection, id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[collection][id]; !ok {
		return ErrNotFound
	}

	delete(m.docs[collection], id)
	m.order[collection] = slices.DeleteFunc(m.order[collection], func(s string) bool {
		return s == id
	})
	return nil
}

// Count returns the number of matching documents.
func (m *Memory) Count(_ context.Context, collection string, filter Filter) (int, error) {
	if collection == "" {
		return 0, ErrEmptyCollection
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(filter) == 0 {
		return len(m.docs[collection]), nil
	}

	n := 0
	for _, doc := range m.docs[collection] {
		if Matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

// Import upserts documents keeping their ids.
func (m *Memory) Import(_ context.Context, collection string, docs []Document) error {
	if collection == "" {
		return ErrEmptyCollection
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, doc := range docs {
		d, err := imported(doc, now)
		if err != nil {
			return err
		}
		m.put(collection, d)
	}
	return nil
}

// put stores doc under its id. Caller must hold the write lock.
func (m *Memory) put(collection string, doc Document) {
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]Document)
	}

	id := doc.ID()
	if _, exists := m.docs[collection][id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	m.docs[collection][id] = doc
}

var (
	_ Store    = (*Memory)(nil)
	_ Importer = (*Memory)(nil)
)
