// Package filter narrows file names and catalog records with glob patterns
// and search terms. The upload and files commands share it so both select
// the same way.
package filter

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/mediastore/mediastore-cli/internal/models"
)

// Config selects names and paths. The zero value selects everything.
type Config struct {
	Include []string // globs on the name or its base; empty includes all
	Exclude []string // globs on the name or its base; wins over Include
	Search  []string // case-insensitive substrings, all must occur
	Paths   []string // globs on the whole path, a "**" segment spans directories
}

// IsEmpty reports whether the config selects everything.
func (c Config) IsEmpty() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0 && len(c.Search) == 0 && len(c.Paths) == 0
}

// Match reports whether name passes every part of the config.
func (c Config) Match(name string) bool {
	if len(c.Paths) > 0 && !anyPath(c.Paths, name) {
		return false
	}

	base := filepath.Base(name)
	if anyGlob(c.Exclude, name, base) {
		return false
	}
	if len(c.Include) > 0 && !anyGlob(c.Include, name, base) {
		return false
	}

	lower := strings.ToLower(name)
	for _, term := range c.Search {
		if !strings.Contains(lower, strings.ToLower(term)) {
			return false
		}
	}
	return true
}

// ApplyToRecords keeps the catalog records whose name passes config.
// Order is preserved and the input is not modified.
func ApplyToRecords(records []models.FileRecord, config Config) []models.FileRecord {
	if config.IsEmpty() {
		return records
	}

	kept := make([]models.FileRecord, 0, len(records))
	for _, r := range records {
		if config.Match(r.Name) {
			kept = append(kept, r)
		}
	}
	return kept
}

// ApplyToPaths keeps the local paths that pass config.
func ApplyToPaths(paths []string, config Config) []string {
	if config.IsEmpty() {
		return paths
	}

	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if config.Match(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// anyGlob reports whether any pattern matches any candidate. Malformed
// patterns never match.
func anyGlob(patterns []string, candidates ...string) bool {
	for _, p := range patterns {
		for _, s := range candidates {
			if ok, _ := filepath.Match(p, s); ok {
				return true
			}
		}
	}
	return false
}

func anyPath(patterns []string, name string) bool {
	segs := strings.Split(filepath.ToSlash(name), "/")
	for _, p := range patterns {
		if matchSegments(strings.Split(filepath.ToSlash(p), "/"), segs) {
			return true
		}
	}
	return false
}

// matchSegments matches pattern segments against path segments one by one.
// A "**" segment absorbs zero or more path segments.
func matchSegments(pattern, segs []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for skip := 0; skip <= len(segs); skip++ {
				if matchSegments(pattern[1:], segs[skip:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], segs[0]); !ok {
			return false
		}
		pattern, segs = pattern[1:], segs[1:]
	}
	return len(segs) == 0
}
