// Package validation checks names before they are sent to the backend.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameBytes is the longest file name most filesystems accept.
const MaxNameBytes = 255

// ValidateUploadName checks the name a file will be stored under. It must be
// a single path element: no separators, not "." or "..", no null bytes and
// valid UTF-8.
//
// Returns nil for names like "cat.png", ".hidden" or "file..v2.json".
func ValidateUploadName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("file name cannot be empty")
	}

	if name == "." || name == ".." {
		return fmt.Errorf("file name cannot be %q", name)
	}

	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("file name contains null byte: %q", name)
	}

	// Reject path separators (both Unix and Windows style)
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("file name cannot contain path separators: %s", name)
	}

	if !utf8.ValidString(name) {
		return fmt.Errorf("file name is not valid UTF-8: %q", name)
	}

	if len(name) > MaxNameBytes {
		return fmt.Errorf("file name is longer than %d bytes: %s...", MaxNameBytes, name[:32])
	}

	return nil
}
