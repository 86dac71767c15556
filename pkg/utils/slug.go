package utils

import "strings"

const slugSeparator = '-'

// Slugify derives the catalog key from a display name: trimmed, lowercased,
// every run of characters outside [a-z0-9] collapsed to a single '-', and
// no leading or trailing separator.
func Slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(lower))
	pendingSep := false
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte(slugSeparator)
			}
			pendingSep = false
			b.WriteByte(c)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
