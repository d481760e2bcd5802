package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/mediastore/mediastore-cli/internal/models"
	"github.com/mediastore/mediastore-cli/internal/util/sanitize"
)

// Search matches query against record names, case-insensitively.
//
// A query shorter than opts.MinSearchLength (after trimming) clears the
// search: the result is ApplyFilters(records, state). Otherwise the query is
// matched against every record (SearchReplace) or only against the records
// state currently selects (SearchCompose).
func Search(records []models.FileRecord, query string, state models.FilterState, opts Options) View {
	q, ok := activeQuery(query, opts)
	if !ok {
		return ApplyFilters(records, state, opts)
	}

	pool := records
	if opts.SearchMode == SearchCompose {
		pool = ApplyFilters(records, state, opts).Records
	}

	needle := strings.ToLower(q)
	out := make([]models.FileRecord, 0, len(pool))
	for _, r := range pool {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}

	return View{Title: SearchTitle(q), Records: out}
}

// activeQuery sanitizes query and reports whether it is long enough to search.
func activeQuery(query string, opts Options) (string, bool) {
	q := sanitize.Query(query)
	return q, utf8.RuneCountInString(q) >= opts.minSearch()
}

// SearchTitle is the heading of a search result view.
func SearchTitle(query string) string {
	return `Search: "` + query + `"`
}
