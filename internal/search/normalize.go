// Package search provides text normalization for verse lookup. Captions and
// free-text queries arrive from Telegram clients in mixed scripts (Arabic,
// Latin, Cyrillic) and mixed Unicode forms; normalizing both at ingestion and
// at query time is what makes substring search behave consistently.
package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// Normalize returns s in NFC form with surrounding whitespace trimmed and
// inner whitespace runs collapsed to single spaces. Applied to stored fields
// and queries alike so composed and decomposed inputs compare equal.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// MinQueryRunes is the shortest free-text input treated as a search query.
const MinQueryRunes = 2

// IsQuery reports whether normalized free text is long enough to search on.
// Single characters generate noise matches across the whole table.
func IsQuery(s string) bool {
	return utf8.RuneCountInString(s) >= MinQueryRunes
}
