package models

import (
	"sort"
	"strings"
)

// FilterAll is the wildcard value of every FilterState field.
const FilterAll = "all"

// FilterState selects a view of the catalog. Each field is either FilterAll or
// a concrete value.
type FilterState struct {
	Type      string `json:"type" yaml:"type"`
	Category  string `json:"category" yaml:"category"`
	Extension string `json:"extension" yaml:"extension"`
}

// DefaultFilterState returns the all/all/all state.
func DefaultFilterState() FilterState {
	return FilterState{Type: FilterAll, Category: FilterAll, Extension: FilterAll}
}

// Normalize maps empty fields to FilterAll, lowercases type and extension and
// canonicalizes the category spelling.
func (s FilterState) Normalize() FilterState {
	out := FilterState{
		Type:      strings.ToLower(strings.TrimSpace(s.Type)),
		Category:  strings.TrimSpace(s.Category),
		Extension: NormalizeExtension(s.Extension),
	}
	if out.Type == "" {
		out.Type = FilterAll
	}
	if out.Category == "" || strings.EqualFold(out.Category, FilterAll) {
		out.Category = FilterAll
	} else {
		out.Category = CanonicalCategory(out.Category)
	}
	if out.Extension == "" {
		out.Extension = FilterAll
	}
	return out
}

// IsDefault reports whether no filter is active.
func (s FilterState) IsDefault() bool {
	n := s.Normalize()
	return n.Type == FilterAll && n.Category == FilterAll && n.Extension == FilterAll
}

// CountTable holds catalog tallies. Categories, extensions and the JSON bucket
// are separate namespaces so a category spelled like an extension never
// shares a counter with it.
type CountTable struct {
	All        int            `json:"all" yaml:"all"`
	JSON       int            `json:"json" yaml:"json"`
	Categories map[string]int `json:"categories" yaml:"categories"`
	Extensions map[string]int `json:"extensions" yaml:"extensions"`
}

// NewCountTable returns a table with a zero entry for every known key.
func NewCountTable(categories, extensions []string) CountTable {
	t := CountTable{
		Categories: make(map[string]int, len(categories)),
		Extensions: make(map[string]int, len(extensions)),
	}
	for _, c := range categories {
		t.Categories[c] = 0
	}
	for _, e := range extensions {
		t.Extensions[NormalizeExtension(e)] = 0
	}
	return t
}

// Get resolves a sidebar key: "all", "JSON", a category, then an extension.
// Unknown keys count zero.
func (t CountTable) Get(key string) int {
	switch {
	case strings.EqualFold(key, FilterAll):
		return t.All
	case strings.EqualFold(key, "json"):
		return t.JSON
	}
	if n, ok := t.Categories[CanonicalCategory(key)]; ok {
		return n
	}
	return t.Extensions[NormalizeExtension(key)]
}

// Clone returns a deep copy.
func (t CountTable) Clone() CountTable {
	out := CountTable{
		All:        t.All,
		JSON:       t.JSON,
		Categories: make(map[string]int, len(t.Categories)),
		Extensions: make(map[string]int, len(t.Extensions)),
	}
	for k, v := range t.Categories {
		out.Categories[k] = v
	}
	for k, v := range t.Extensions {
		out.Extensions[k] = v
	}
	return out
}

// SortedCategories returns category keys in lexical order.
func (t CountTable) SortedCategories() []string {
	return sortedKeys(t.Categories)
}

// SortedExtensions returns extension keys in lexical order.
func (t CountTable) SortedExtensions() []string {
	return sortedKeys(t.Extensions)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
