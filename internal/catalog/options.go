// Package catalog holds the client-side file catalog and derives filtered,
// searched and counted views of it.
package catalog

import (
	"strings"

	"github.com/mediastore/mediastore-cli/internal/config"
	"github.com/mediastore/mediastore-cli/internal/constants"
	"github.com/mediastore/mediastore-cli/internal/models"
)

// SearchMode decides what a search query is matched against.
type SearchMode string

const (
	// SearchReplace matches against the full cache, ignoring active filters.
	SearchReplace SearchMode = config.SearchModeReplace
	// SearchCompose matches within the currently filtered view.
	SearchCompose SearchMode = config.SearchModeCompose
)

// Options tunes filtering, counting and search.
type Options struct {
	// GroupedCategories match on category alone, whatever extension is selected.
	GroupedCategories []string
	// KnownCategories get a counter in CountTable.Categories.
	KnownCategories []string
	// KnownExtensions get a counter in CountTable.Extensions.
	KnownExtensions []string
	SearchMode      SearchMode
	// MinSearchLength is measured in runes after trimming.
	MinSearchLength int
}

// DefaultOptions returns the stock categories and extensions with replace search.
func DefaultOptions() Options {
	return Options{
		GroupedCategories: append([]string(nil), constants.DefaultGroupedCategories...),
		KnownCategories:   append([]string(nil), constants.DefaultCategories...),
		KnownExtensions:   constants.MediaExtensions(),
		SearchMode:        SearchReplace,
		MinSearchLength:   constants.MinSearchLength,
	}
}

// OptionsFromConfig applies the [catalog] section on top of DefaultOptions.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if len(cfg.GroupedCategories) > 0 {
		opts.GroupedCategories = make([]string, 0, len(cfg.GroupedCategories))
		for _, c := range cfg.GroupedCategories {
			opts.GroupedCategories = append(opts.GroupedCategories, models.CanonicalCategory(c))
		}
	}
	if cfg.SearchMode != "" {
		opts.SearchMode = SearchMode(strings.ToLower(cfg.SearchMode))
	}
	if cfg.MinSearchLength > 0 {
		opts.MinSearchLength = cfg.MinSearchLength
	}
	return opts
}

func (o Options) minSearch() int {
	if o.MinSearchLength <= 0 {
		return constants.MinSearchLength
	}
	return o.MinSearchLength
}

func (o Options) isGrouped(category string) bool {
	return containsFold(o.GroupedCategories, category)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
