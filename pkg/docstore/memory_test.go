package docstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/schooldash/pkg/docstore"
)

func TestMemory_Insert(t *testing.T) {
	t.Parallel()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		t.Parallel()

		s := docstore.NewMemory()
		ctx := context.Background()

		doc, err := s.Insert(ctx, "schools", docstore.Document{
			"name":                  "Riverside",
			docstore.FieldID:        "client-supplied",
			docstore.FieldUpdatedAt: "yesterday",
		})
		require.NoError(t, err)
		require.NotEmpty(t, doc.ID())
		require.NotEqual(t, "client-supplied", doc.ID())
		require.NotEmpty(t, doc[docstore.FieldCreatedAt])
		require.Equal(t, doc[docstore.FieldCreatedAt], doc[docstore.FieldUpdatedAt])
		require.Equal(t, "Riverside", doc["name"])
	})

	t.Run("does not alias the input", func(t *testing.T) {
		t.Parallel()

		s := docstore.NewMemory()
		ctx := context.Background()

		in := docstore.Document{"name": "A"}
		doc, err := s.Insert(ctx, "schools", in)
		require.NoError(t, err)

		in["name"] = "changed"
		doc["name"] = "changed too"

		got, err := s.FindOne(ctx, "schools", doc.ID())
		require.NoError(t, err)
		require.Equal(t, "A", got["name"])
		require.NotContains(t, in, docstore.FieldID)
	})

	t.Run("validates arguments", func(t *testing.T) {
		t.Parallel()

		s := docstore.NewMemory()
		ctx := context.Background()

		_, err := s.Insert(ctx, "", docstore.Document{})
		require.ErrorIs(t, err, docstore.ErrEmptyCollection)

		_, err = s.Insert(ctx, "schools", nil)
		require.ErrorIs(t, err, docstore.ErrInvalidDocument)
	})
}

func TestMemory_Find(t *testing.T) {
	t.Parallel()

	s := docstore.NewMemory()
	ctx := context.Background()

	for _, d := range []docstore.Document{
		{"name": "t1", "schoolId": "s1", "grade": 3},
		{"name": "t2", "schoolId": "s2", "grade": 4},
		{"name": "t3", "schoolId": "s1", "grade": 4},
	} {
		_, err := s.Insert(ctx, "teachers", d)
		require.NoError(t, err)
	}

	t.Run("returns all in insertion order", func(t *testing.T) {
		t.Parallel()

		docs, err := s.Find(ctx, "teachers", nil)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		require.Equal(t, "t1", docs[0]["name"])
		require.Equal(t, "t3", docs[2]["name"])
	})

	t.Run("filters by equality", func(t *testing.T) {
		t.Parallel()

		docs, err := s.Find(ctx, "teachers", docstore.Filter{"schoolId": "s1"})
		require.NoError(t, err)
		require.Len(t, docs, 2)

		docs, err = s.Find(ctx, "teachers", docstore.Filter{"schoolId": "s1", "grade": "4"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		require.Equal(t, "t3", docs[0]["name"])
	})

	t.Run("unknown collection is empty", func(t *testing.T) {
		t.Parallel()

		docs, err := s.Find(ctx, "nothing", nil)
		require.NoError(t, err)
		require.Empty(t, docs)
	})

	t.Run("count", func(t *testing.T) {
		t.Parallel()

		n, err := s.Count(ctx, "teachers", nil)
		require.NoError(t, err)
		require.Equal(t, 3, n)

		n, err = s.Count(ctx, "teachers", docstore.Filter{"schoolId": "s2"})
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})
}

func TestMemory_Update(t *testing.T) {
	t.Parallel()

	s := docstore.NewMemory()
	ctx := context.Background()

	doc, err := s.Insert(ctx, "schools", docstore.Document{"name": "Old", "city": "Porto"})
	require.NoError(t, err)

	t.Run("merges patch and protects managed fields", func(t *testing.T) {
		updated, err := s.Update(ctx, "schools", doc.ID(), docstore.Document{
			"name":                  "New",
			docstore.FieldID:        "hijack",
			docstore.FieldCreatedAt: "1999-01-01",
		})
		require.NoError(t, err)
		require.Equal(t, doc.ID(), updated.ID())
		require.Equal(t, "New", updated["name"])
		require.Equal(t, "Porto", updated["city"])
		require.Equal(t, doc[docstore.FieldCreatedAt], updated[docstore.FieldCreatedAt])
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := s.Update(ctx, "schools", "nope", docstore.Document{"name": "x"})
		require.ErrorIs(t, err, docstore.ErrNotFound)

		_, err = s.Update(ctx, "schools", "", docstore.Document{"name": "x"})
		require.ErrorIs(t, err, docstore.ErrEmptyID)
	})
}

func TestMemory_Delete(t *testing.T) {
	t.Parallel()

	s := docstore.NewMemory()
	ctx := context.Background()

	a, err := s.Insert(ctx, "schools", docstore.Document{"name": "A"})
	require.NoError(t, err)
	b, err := s.Insert(ctx, "schools", docstore.Document{"name": "B"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "schools", a.ID()))
	require.ErrorIs(t, s.Delete(ctx, "schools", a.ID()), docstore.ErrNotFound)

	_, err = s.FindOne(ctx, "schools", a.ID())
	require.ErrorIs(t, err, docstore.ErrNotFound)

	docs, err := s.Find(ctx, "schools", nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, b.ID(), docs[0].ID())
}

func TestMemory_Import(t *testing.T) {
	t.Parallel()

	s := docstore.NewMemory()
	ctx := context.Background()

	err := s.Import(ctx, "schools", []docstore.Document{
		{"id": "school-1", "name": "A"},
		{"id": "school-2", "name": "B"},
	})
	require.NoError(t, err)

	// Upsert keeps position and id.
	err = s.Import(ctx, "schools", []docstore.Document{{"id": "school-1", "name": "A2"}})
	require.NoError(t, err)

	docs, err := s.Find(ctx, "schools", nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "school-1", docs[0].ID())
	require.Equal(t, "A2", docs[0]["name"])
	require.NotEmpty(t, docs[0][docstore.FieldCreatedAt])

	err = s.Import(ctx, "schools", []docstore.Document{{"name": "no id"}})
	require.ErrorIs(t, err, docstore.ErrInvalidDocument)
}
