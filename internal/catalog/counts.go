package catalog

import (
	"github.com/mediastore/mediastore-cli/internal/models"
)

// CountByCategory tallies records in one pass.
//
// Every record counts toward All. A record counts toward its category when
// the category is known. JSON records also count toward the JSON bucket and
// never toward an extension; grouped categories are counted by category only.
// Media records count toward their extension when it is known. Unknown keys
// are ignored.
func CountByCategory(records []models.FileRecord, opts Options) models.CountTable {
	table := models.NewCountTable(opts.KnownCategories, opts.KnownExtensions)
	table.All = len(records)

	for _, r := range records {
		category := models.CanonicalCategory(r.Category)
		if _, known := table.Categories[category]; known && category != "" {
			table.Categories[category]++
		}

		switch {
		case r.Type == models.FileTypeJSON:
			table.JSON++
		case opts.isGrouped(category):
			// category only
		case r.Type.IsMedia():
			if _, known := table.Extensions[r.Extension]; known {
				table.Extensions[r.Extension]++
			}
		}
	}

	return table
}
