// Package docstore provides a small collection-oriented document store
// abstraction with in-memory, PostgreSQL and Redis backends.
//
// Documents are schemaless maps. Every backend manages three fields:
// "id" (a UUIDv7 string), "createdAt" and "updatedAt" (RFC 3339 UTC).
//
//	store := docstore.NewPostgres(pool)
//
//	school, err := store.Insert(ctx, "schools", docstore.Document{"name": "Riverside"})
//	teachers, err := store.Find(ctx, "teachers", docstore.Filter{"schoolId": school.ID()})
//	err = store.Delete(ctx, "schools", school.ID())
//
// # Backends
//
//   - [Memory]: mutex-guarded maps, insertion order; tests and fallback data
//   - [Postgres]: one JSONB table, containment filters; run [Migrations] first
//   - [Redis]: one hash per collection, optimistic WATCH updates
//
// # Fallback
//
// [Fallback] serves reads from a secondary store (usually a [Memory] loaded
// with [DefaultFixtures]) when the primary returns [ErrUnavailable]:
//
//	fixtures, _ := docstore.DefaultFixtures()
//	mock, _ := docstore.NewMemoryWithFixtures(fixtures)
//	store := docstore.NewFallback(docstore.NewRedis(client), mock, log)
//
// # Error Handling
//
//   - [ErrNotFound]: no document with that id
//   - [ErrUnavailable]: backend unreachable (joined with the driver error)
//   - [ErrInvalidDocument]: nil or unencodable document, bad fixtures
//   - [ErrEmptyCollection], [ErrEmptyID]: missing arguments
package docstore
