// Package strings provides string utility functions.
package strings

import "strconv"

// Pluralize returns singular or plural form based on count.
// Example: Pluralize("file", 1) returns "file", Pluralize("file", 2) returns "files"
func Pluralize(word string, count int64) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// CountNoun formats count followed by the matching form of word, e.g. "3 files".
func CountNoun(count int, word string) string {
	return strconv.Itoa(count) + " " + Pluralize(word, int64(count))
}
