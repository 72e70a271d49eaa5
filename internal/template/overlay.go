package template

// Overlay merges values from source onto template where keys match by
// normalized name, preserving the template's structure. It is a best-effort
// merge: it never invents keys, never fails, and keeps template defaults
// wherever no match exists.
//
//   - scalar template: the source value wins unless it is nil.
//   - object template: each template key is matched against the source by
//     normalized key first, then by literal key; extra source keys are
//     dropped. The output has exactly the template's keys.
//   - array template: a non-empty source array re-cardinalizes the output —
//     every source element is overlaid onto the template's first element (the
//     shape archetype). Anything else leaves the template array unchanged.
func Overlay(template, source any) any {
	switch t := template.(type) {
	case map[string]any:
		sourceMap := map[string]any{}
		srcObj, srcIsObj := source.(map[string]any)
		if srcIsObj {
			for k, v := range srcObj {
				sourceMap[NormalizeKey(k)] = v
			}
		}

		out := make(map[string]any, len(t))
		for k, v := range t {
			if matched, ok := sourceMap[NormalizeKey(k)]; ok {
				out[k] = Overlay(v, matched)
			} else if srcIsObj {
				if direct, ok := srcObj[k]; ok {
					out[k] = Overlay(v, direct)
				} else {
					out[k] = v
				}
			} else {
				out[k] = v
			}
		}
		return out

	case []any:
		srcList, ok := source.([]any)
		if !ok || len(srcList) == 0 {
			return t
		}
		var itemShape any = map[string]any{}
		if len(t) > 0 {
			itemShape = t[0]
		}
		out := make([]any, 0, len(srcList))
		for _, s := range srcList {
			out = append(out, Overlay(itemShape, s))
		}
		return out

	default:
		if source != nil {
			return source
		}
		return template
	}
}
