package template

// Clean strips a sample template of its example values while preserving
// structure. Strings become "", numbers and bools become nil, objects keep
// their keys, and a non-empty array collapses to a single element: the
// cleaned first item, which acts as the shape archetype for real data.
// Clean is idempotent and never mutates its input.
func Clean(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = Clean(val)
		}
		return out
	case []any:
		if len(v) == 0 {
			return []any{}
		}
		return []any{Clean(v[0])}
	case string:
		return ""
	case float64, int, int64, bool:
		return nil
	default:
		return v
	}
}
