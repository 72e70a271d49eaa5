package jsontext

import "sort"

// payloadKeys is the shallow search order for locating the extraction payload
// inside an analysis result.
var payloadKeys = []string{
	"result",
	"analyzeResult",
	"analyze_result",
	"documents",
	"documentResults",
	"content",
}

// ExtractPayload locates the extraction payload inside an arbitrary analysis
// result. Phase 1 checks the conventional top-level keys in priority order:
// an object value is returned directly, a string value is scanned for
// embedded JSON. Phase 2 falls back to a pre-order walk of the whole tree,
// scanning every string leaf. Returns (nil, false) when nothing is found.
func ExtractPayload(result any) (any, bool) {
	if m, ok := result.(map[string]any); ok {
		for _, key := range payloadKeys {
			candidate, present := m[key]
			if !present {
				continue
			}
			switch v := candidate.(type) {
			case map[string]any:
				return v, true
			case string:
				if parsed, ok := FindJSON(v); ok {
					return parsed, true
				}
			}
		}
	}
	return deepScan(result)
}

func deepScan(node any) (any, bool) {
	switch v := node.(type) {
	case map[string]any:
		for _, k := range sortedKeys(v) {
			if res, ok := deepScan(v[k]); ok {
				return res, true
			}
		}
	case []any:
		for _, item := range v {
			if res, ok := deepScan(item); ok {
				return res, true
			}
		}
	case string:
		return FindJSON(v)
	}
	return nil, false
}

// sortedKeys gives the deep fallback a fixed traversal order; Go map
// iteration order is randomized, which would make the "first" match
// nondeterministic across runs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
