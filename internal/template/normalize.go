package template

import "strings"

// NormalizeKey canonicalizes a field name for case- and
// punctuation-insensitive matching: lower-case, then drop every character
// that is not an ASCII letter or digit. "Heat-Number", "HEAT_NUMBER" and
// "heatnumber" all normalize to "heatnumber". The normalized form is only
// ever used as a lookup key; original keys are what gets written to output.
func NormalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}
