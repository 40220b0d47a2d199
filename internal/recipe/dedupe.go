package recipe

import (
	"regexp"
	"strings"
)

var dedupeKeyStrip = regexp.MustCompile(`[^\w\s]`)

// DedupeKey normalizes a title for uniqueness checks: lower-cased,
// non-word characters stripped, internal whitespace collapsed, trimmed.
func DedupeKey(title string) string {
	key := strings.ToLower(title)
	key = dedupeKeyStrip.ReplaceAllString(key, "")
	key = multiSpace.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}

// Dedupe collapses recipes from multiple sources into a unique set keyed by
// normalized title. Order is preserved and the first occurrence wins, so
// callers control priority by source order. It must run before any
// maxResults truncation.
func Dedupe(recipes []Recipe) []Recipe {
	seen := make(map[string]bool, len(recipes))
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		key := DedupeKey(r.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
