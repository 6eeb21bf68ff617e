package dashboard

import (
	"time"

	"github.com/dmitrymomot/schooldash/pkg/cache"
)

// Resource describes one document collection exposed by the dashboard.
type Resource struct {
	// Collection is the store collection and the collection cache key.
	Collection string
	// Singular prefixes item cache keys.
	Singular string
	// Parent is the collection this resource belongs to, empty for roots.
	Parent string
	// ParentField holds the parent document id, e.g. "schoolId".
	ParentField string
	// ParentName names the parent in view keys: teachers_school_<id>.
	ParentName string
	// TTL is the freshness window for every key of this resource.
	TTL time.Duration
	// Rich lists free-text fields that keep basic HTML formatting.
	Rich []string
}

// HasParent reports whether the resource is scoped by a parent document.
func (r Resource) HasParent() bool { return r.Parent != "" }

// Collections served by the dashboard.
const (
	Schools    = "schools"
	Teachers   = "teachers"
	Mentors    = "mentors"
	Trainings  = "trainings"
	Attendance = "attendance"
)

var resources = []Resource{
	{
		Collection: Schools,
		Singular:   "school",
		TTL:        cache.TTLLong,
	},
	{
		Collection:  Teachers,
		Singular:    "teacher",
		Parent:      Schools,
		ParentField: "schoolId",
		ParentName:  "school",
		TTL:         cache.TTLMedium,
	},
	{
		Collection:  Mentors,
		Singular:    "mentor",
		Parent:      Schools,
		ParentField: "schoolId",
		ParentName:  "school",
		TTL:         cache.TTLMedium,
	},
	{
		Collection:  Trainings,
		Singular:    "training",
		Parent:      Schools,
		ParentField: "schoolId",
		ParentName:  "school",
		TTL:         cache.TTLMedium,
		Rich:        []string{"description"},
	},
	{
		Collection:  Attendance,
		Singular:    "attendance_record",
		Parent:      Trainings,
		ParentField: "trainingId",
		ParentName:  "training",
		TTL:         cache.TTLShort,
		Rich:        []string{"notes"},
	},
}

// Resources returns every resource in declaration order.
func Resources() []Resource {
	out := make([]Resource, len(resources))
	copy(out, resources)
	return out
}

// Lookup finds a resource by collection name.
func Lookup(collection string) (Resource, bool) {
	for _, r := range resources {
		if r.Collection == collection {
			return r, true
		}
	}
	return Resource{}, false
}

// children returns the resources whose parent is collection.
func children(collection string) []Resource {
	var out []Resource
	for _, r := range resources {
		if r.Parent == collection {
			out = append(out, r)
		}
	}
	return out
}
