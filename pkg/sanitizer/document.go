package sanitizer

import "slices"

// Document returns a copy of doc with every string value stripped of HTML,
// descending into nested maps and slices. Top-level keys listed in rich keep
// basic formatting instead. Non-string values are copied unchanged.
func Document(doc map[string]any, rich ...string) map[string]any {
	if doc == nil {
		return nil
	}

	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if s, ok := v.(string); ok && slices.Contains(rich, k) {
			out[k] = SanitizeHTML(s)
			continue
		}
		out[k] = value(v)
	}
	return out
}

func value(v any) any {
	switch t := v.(type) {
	case string:
		return StripHTML(t)
	case map[string]any:
		return Document(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = value(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, e := range t {
			out[i] = StripHTML(e)
		}
		return out
	default:
		return v
	}
}
