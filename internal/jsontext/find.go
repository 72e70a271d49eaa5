package jsontext

import "encoding/json"

// FindJSON locates the first balanced JSON object in s and parses it. When no
// object parses, the same scan is repeated for arrays. The depth counter only
// tracks the delimiter characters themselves; braces inside string values are
// not tracked, so a string containing a literal brace can end a candidate
// early. Returns (nil, false) when nothing parses.
func FindJSON(s string) (any, bool) {
	if v, ok := scanBalanced(s, '{', '}'); ok {
		return v, true
	}
	if v, ok := scanBalanced(s, '[', ']'); ok {
		return v, true
	}
	return nil, false
}

func scanBalanced(s string, open, close byte) (any, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != open {
			continue
		}
		depth := 0
		for i := start; i < len(s); i++ {
			switch s[i] {
			case open:
				depth++
			case close:
				depth--
				if depth == 0 {
					var v any
					if err := json.Unmarshal([]byte(s[start:i+1]), &v); err == nil {
						return v, true
					}
					// candidate failed to parse; resume at the next opener
					i = len(s)
				}
			}
		}
	}
	return nil, false
}
