// Package dashboard is the data-access layer of the school dashboard.
//
// Every read goes through a shared [cache.ReadThrough] under a key derived
// from the resource: "schools" for a collection, "school_<id>" for one
// document, "teachers_school_<id>" for the documents of one parent and
// "dashboard_stats" for the aggregate counts.
//
// Writes go to the document store first. Only after the store accepts them
// are the affected keys dropped: the collection, the item, every parent view
// of the collection and the stats. Create and Update then store the returned
// document under its item key so the next read is a hit.
package dashboard
