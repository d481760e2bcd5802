package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediastore/mediastore-cli/internal/models"
)

func TestSearchMatchesSubstring(t *testing.T) {
	records := []models.FileRecord{
		rec("abc.png", models.FileTypeImage, "Images", "png"),
		rec("xyz.json", models.FileTypeJSON, "SQL", "json"),
	}

	view := Search(records, "ab", models.DefaultFilterState(), DefaultOptions())

	assert.Equal(t, []string{"abc.png"}, names(view.Records))
	assert.Equal(t, `Search: "ab"`, view.Title)
}

func TestSearchShortQueryFallsBackToFilters(t *testing.T) {
	records := []models.FileRecord{
		rec("abc.png", models.FileTypeImage, "Images", "png"),
		rec("xyz.json", models.FileTypeJSON, "SQL", "json"),
	}
	state := models.FilterState{Category: "SQL"}

	got := Search(records, "a", state, DefaultOptions())
	want := ApplyFilters(records, state, DefaultOptions())

	assert.Equal(t, want, got)
	assert.Equal(t, []string{"xyz.json"}, names(got.Records))
}

func TestSearchTrimsAndIgnoresCase(t *testing.T) {
	records := sampleCatalog()

	view := Search(records, "  CAT ", models.DefaultFilterState(), DefaultOptions())
	assert.Equal(t, []string{"cat.png"}, names(view.Records))

	// Whitespace padding does not count toward the minimum length
	view = Search(records, " c ", models.DefaultFilterState(), DefaultOptions())
	assert.Equal(t, AllFilesTitle, view.Title)
	assert.Len(t, view.Records, len(records))
}

func TestSearchCountsRunes(t *testing.T) {
	records := []models.FileRecord{rec("été.png", models.FileTypeImage, "Images", "png")}

	view := Search(records, "ét", models.DefaultFilterState(), DefaultOptions())
	assert.Equal(t, []string{"été.png"}, names(view.Records))

	view = Search(records, "é", models.FilterState{Type: "video"}, DefaultOptions())
	assert.Empty(t, view.Records, "one rune is below the minimum, so the type filter applies")
}

func TestSearchReplaceIgnoresFilters(t *testing.T) {
	view := Search(sampleCatalog(), "json", models.FilterState{Category: "Images"}, DefaultOptions())
	assert.Equal(t, []string{"orders.json", "events.json"}, names(view.Records))
}

func TestSearchComposeNarrowsFilteredView(t *testing.T) {
	opts := DefaultOptions()
	opts.SearchMode = SearchCompose

	view := Search(sampleCatalog(), "json", models.FilterState{Category: "NoSQL"}, opts)
	assert.Equal(t, []string{"events.json"}, names(view.Records))
}

func TestSearchCustomMinimumLength(t *testing.T) {
	opts := DefaultOptions()
	opts.MinSearchLength = 4

	view := Search(sampleCatalog(), "cat", models.DefaultFilterState(), opts)
	assert.Equal(t, AllFilesTitle, view.Title)
}
