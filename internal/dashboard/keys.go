package dashboard

import "regexp"

// StatsKey caches the aggregate counts shown on the dashboard landing page.
const StatsKey = "dashboard_stats"

// CollectionKey is the key of the full list of a collection: "teachers".
func CollectionKey(r Resource) string {
	return r.Collection
}

// ItemKey is the key of a single document: "teacher_<id>".
func ItemKey(r Resource, id string) string {
	return r.Singular + "_" + id
}

// ParentKey is the key of the documents that belong to one parent:
// "teachers_school_<parentID>".
func ParentKey(r Resource, parentID string) string {
	return parentPrefix(r) + parentID
}

// ParentPattern matches every parent view key of r.
func ParentPattern(r Resource) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(parentPrefix(r)))
}

func parentPrefix(r Resource) string {
	return r.Collection + "_" + r.ParentName + "_"
}
