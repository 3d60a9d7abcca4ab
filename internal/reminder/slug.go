package reminder

import (
	"strconv"
	"strings"
	"unicode"
)

// SlugKey derives a stable identifier from a display name: lowercase,
// spaces become underscores, anything that is not a letter, digit or
// underscore is stripped. Deterministic and pure.
func SlugKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// uniqueKey resolves collisions by linear probing with a numeric suffix:
// base, base_1, base_2, ...
func uniqueKey(base string, taken func(string) bool) string {
	key := base
	for n := 1; taken(key); n++ {
		key = base + "_" + strconv.Itoa(n)
	}
	return key
}
