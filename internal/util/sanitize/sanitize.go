// Package sanitize cleans user-typed search queries and file names.
//
// Pasted text often carries invisible Unicode and stray line breaks that
// would make an otherwise matching query miss.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	invisibleChars = strings.NewReplacer(
		"\u200B", "", // Zero-width space
		"\u200C", "", // Zero-width non-joiner
		"\u200D", "", // Zero-width joiner
		"\uFEFF", "", // Zero-width no-break space (BOM)
		"\u00AD", "", // Soft hyphen
		"\u2060", "", // Word joiner
		"\u180E", "", // Mongolian vowel separator
	)
)

// Query prepares a search query: invisible characters are removed, any run of
// whitespace (including line breaks) becomes one space, and the ends are trimmed.
func Query(q string) string {
	if q == "" {
		return q
	}
	q = invisibleChars.Replace(q)
	q = whitespaceRun.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}

// Name removes invisible characters and line breaks from a file name and
// trims it. Inner spaces are kept as-is.
func Name(name string) string {
	if name == "" {
		return name
	}
	name = invisibleChars.Replace(name)
	name = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(name)
	return strings.TrimSpace(name)
}
