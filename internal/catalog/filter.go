package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mediastore/mediastore-cli/internal/constants"
	"github.com/mediastore/mediastore-cli/internal/models"
)

// AllFilesTitle is the title of the unfiltered view.
const AllFilesTitle = "All Files"

// View is a titled subset of the catalog.
type View struct {
	Title   string              `json:"title" yaml:"title"`
	Records []models.FileRecord `json:"records" yaml:"records"`
}

// ApplyFilters narrows records by state. It is pure: the input slice is never
// modified and the output keeps input order.
//
// Type is applied first. A category then matches on category alone when it is
// grouped (SQL, NoSQL), or on category and extension when an extension is also
// selected. An extension without a category is ignored.
func ApplyFilters(records []models.FileRecord, state models.FilterState, opts Options) View {
	state = state.Normalize()

	out := make([]models.FileRecord, 0, len(records))
	for _, r := range records {
		if matches(r, state, opts) {
			out = append(out, r)
		}
	}

	return View{Title: Title(state, opts), Records: out}
}

func matches(r models.FileRecord, state models.FilterState, opts Options) bool {
	if state.Type != models.FilterAll && string(r.Type) != state.Type {
		return false
	}

	if state.Category != models.FilterAll {
		if r.Category == "" || !strings.EqualFold(r.Category, state.Category) {
			return false
		}
		if opts.isGrouped(state.Category) {
			return true
		}
		return state.Extension == models.FilterAll || r.Extension == state.Extension
	}

	return true
}

// Title derives the view heading. Precedence: category with extension,
// category, type, then "All Files". Grouped categories always
// carry the json extension.
func Title(state models.FilterState, opts Options) string {
	state = state.Normalize()

	if state.Category != models.FilterAll {
		ext := state.Extension
		if opts.isGrouped(state.Category) {
			ext = constants.StructuredExtension
		}
		if ext != models.FilterAll {
			return state.Category + " · " + strings.ToUpper(ext)
		}
		return state.Category
	}

	if state.Type != models.FilterAll {
		return typeTitle(state.Type)
	}

	return AllFilesTitle
}

func typeTitle(t string) string {
	switch models.FileType(t) {
	case models.FileTypeImage:
		return "Image Files"
	case models.FileTypeVideo:
		return "Video Files"
	case models.FileTypeJSON:
		return "JSON Files"
	case models.FileTypeText:
		return "Text Files"
	case models.FileTypeOther:
		return "Other Files"
	default:
		if t == "" {
			return AllFilesTitle
		}
		r, size := utf8.DecodeRuneInString(t)
		return string(unicode.ToUpper(r)) + t[size:] + " Files"
	}
}
