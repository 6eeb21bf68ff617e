package docstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/schooldash/pkg/docstore"
)

// runStoreContract checks the behavior every Store backend shares.
// newStore must return an empty store scoped to the calling test.
func runStoreContract(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("insert then find", func(t *testing.T) {
		s := newStore(t)

		a, err := s.Insert(ctx, "teachers", docstore.Document{"name": "Ana", "schoolId": "s1"})
		require.NoError(t, err)
		b, err := s.Insert(ctx, "teachers", docstore.Document{"name": "Rui", "schoolId": "s2"})
		require.NoError(t, err)
		require.NotEqual(t, a.ID(), b.ID())

		all, err := s.Find(ctx, "teachers", nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, a.ID(), all[0].ID())

		one, err := s.Find(ctx, "teachers", docstore.Filter{"schoolId": "s2"})
		require.NoError(t, err)
		require.Len(t, one, 1)
		require.Equal(t, "Rui", one[0]["name"])

		n, err := s.Count(ctx, "teachers", docstore.Filter{"schoolId": "s1"})
		require.NoError(t, err)
		require.Equal(t, 1, n)

		n, err = s.Count(ctx, "teachers", nil)
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("find one", func(t *testing.T) {
		s := newStore(t)

		doc, err := s.Insert(ctx, "schools", docstore.Document{"name": "Oakwood"})
		require.NoError(t, err)

		got, err := s.FindOne(ctx, "schools", doc.ID())
		require.NoError(t, err)
		require.Equal(t, "Oakwood", got["name"])

		_, err = s.FindOne(ctx, "schools", "missing")
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("update merges and keeps managed fields", func(t *testing.T) {
		s := newStore(t)

		doc, err := s.Insert(ctx, "schools", docstore.Document{"name": "Old", "city": "Braga"})
		require.NoError(t, err)

		updated, err := s.Update(ctx, "schools", doc.ID(), docstore.Document{
			"name":                  "New",
			docstore.FieldID:        "hijack",
			docstore.FieldCreatedAt: "1999-01-01T00:00:00Z",
		})
		require.NoError(t, err)
		require.Equal(t, doc.ID(), updated.ID())
		require.Equal(t, "New", updated["name"])
		require.Equal(t, "Braga", updated["city"])
		require.Equal(t, doc[docstore.FieldCreatedAt], updated[docstore.FieldCreatedAt])

		_, err = s.Update(ctx, "schools", "missing", docstore.Document{"name": "x"})
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)

		doc, err := s.Insert(ctx, "mentors", docstore.Document{"name": "Carla"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "mentors", doc.ID()))
		require.ErrorIs(t, s.Delete(ctx, "mentors", doc.ID()), docstore.ErrNotFound)

		_, err = s.FindOne(ctx, "mentors", doc.ID())
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("seed keeps fixture ids", func(t *testing.T) {
		s := newStore(t)

		f, err := docstore.DefaultFixtures()
		require.NoError(t, err)

		n, err := docstore.Seed(ctx, s, f)
		require.NoError(t, err)
		require.Equal(t, 19, n)

		got, err := s.FindOne(ctx, "teachers", "teacher-4")
		require.NoError(t, err)
		require.Equal(t, "school-2", got["schoolId"])

		// Seeding twice upserts instead of duplicating.
		_, err = docstore.Seed(ctx, s, f)
		require.NoError(t, err)
		n, err = s.Count(ctx, "schools", nil)
		require.NoError(t, err)
		require.Equal(t, 3, n)
	})
}

func TestMemory_Contract(t *testing.T) {
	t.Parallel()

	runStoreContract(t, func(*testing.T) docstore.Store { return docstore.NewMemory() })
}
