package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediastore/mediastore-cli/internal/api"
	"github.com/mediastore/mediastore-cli/internal/catalog"
	"github.com/mediastore/mediastore-cli/internal/models"
	"github.com/mediastore/mediastore-cli/internal/util/filter"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List, search and upload files",
		Long: `Catalog and upload commands.

Commands:
  list    - List the catalog, optionally filtered
  search  - Search file names in the catalog
  counts  - Show how many files each category and extension holds
  upload  - Upload local files`,
	}

	cmd.AddCommand(newFilesListCmd())
	cmd.AddCommand(newFilesSearchCmd())
	cmd.AddCommand(newFilesCountsCmd())
	cmd.AddCommand(newFilesUploadCmd())

	return cmd
}

// viewFlags are shared by list and search.
type viewFlags struct {
	fileType  string
	category  string
	extension string
	include   []string
	exclude   []string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.fileType, "type", "t", models.FilterAll, "File type: all, image, video, json, text, other")
	cmd.Flags().StringVar(&f.category, "category", models.FilterAll, "Category, e.g. Images, Videos, SQL, NoSQL")
	cmd.Flags().StringVar(&f.extension, "ext", models.FilterAll, "Extension within --category, e.g. png, mp4 (ignored without --category)")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "Only show names matching these globs (comma-separated)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Hide names matching these globs (comma-separated)")
}

func (f *viewFlags) state() models.FilterState {
	return models.FilterState{Type: f.fileType, Category: f.category, Extension: f.extension}.Normalize()
}

func (f *viewFlags) nameFilter() filter.Config {
	return filter.Config{Include: f.include, Exclude: f.exclude}
}

// loadCatalog fetches the catalog into a new store. A failed load is reported
// once, with a desktop notification when the backend is unreachable.
func loadCatalog(cmd *cobra.Command, mode string) (*catalog.Store, error) {
	client, cfg, err := getAPIClient()
	if err != nil {
		return nil, err
	}
	store, err := newStore(cfg, client, mode, nil)
	if err != nil {
		return nil, err
	}

	records, err := store.LoadAll(commandContext(cmd))
	if err != nil {
		if api.IsConnectivityError(err) {
			newNotifier(cfg, false).ConnectivityLost(cfg.BaseURL, err)
		}
		return nil, err
	}
	GetLogger().Debug().Int("records", len(records)).Msg("Catalog loaded")
	return store, nil
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var flags viewFlags
	var terms []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files in the catalog",
		Long: `List the catalog held by the backend.

Filters combine: --type is applied first, then --category and --ext.
SQL and NoSQL match on category alone whatever --ext says.

Examples:
  mediastore files list
  mediastore files list --category Images --ext png
  mediastore files list --type video
  mediastore files list --category SQL -o json
  mediastore files list --include "cat*" --exclude "*.gif"
  mediastore files list --search "vacation,2024"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadCatalog(cmd, "")
			if err != nil {
				return err
			}

			view := store.ApplyFilters(flags.state())
			nf := flags.nameFilter()
			nf.Search = terms
			view.Records = filter.ApplyToRecords(view.Records, nf)

			return renderView(cmd, view)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVarP(&terms, "search", "s", nil, "Case-insensitive name terms, all must match (comma-separated)")

	return cmd
}

// newFilesSearchCmd creates the 'files search' command.
func newFilesSearchCmd() *cobra.Command {
	var flags viewFlags
	var mode string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search file names in the catalog",
		Long: `Search the catalog by file name, case-insensitively.

Queries shorter than the configured minimum (2 characters by default) are
ignored and the filtered list is shown instead.

Search modes:
  replace - match against the whole catalog, ignoring filters (default)
  compose - match only within the files the filters select

Examples:
  mediastore files search cat
  mediastore files search report --mode compose --category SQL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadCatalog(cmd, mode)
			if err != nil {
				return err
			}

			store.ApplyFilters(flags.state())
			view := store.Search(args[0])
			view.Records = filter.ApplyToRecords(view.Records, flags.nameFilter())

			if store.Query() == "" {
				GetLogger().Info().
					Int("min_length", store.Options().MinSearchLength).
					Msg("Query too short, showing filtered list")
			}
			return renderView(cmd, view)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", "", "Search mode: replace or compose (default from config)")

	return cmd
}

// newFilesCountsCmd creates the 'files counts' command.
func newFilesCountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show file counts per category and extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadCatalog(cmd, "")
			if err != nil {
				return err
			}

			counts := store.Counts()
			if ok, err := writeStructured(cmd.OutOrStdout(), outputFormat, counts); ok {
				return err
			}
			printCounts(cmd.OutOrStdout(), counts)
			return nil
		},
	}

	return cmd
}

func renderView(cmd *cobra.Command, view catalog.View) error {
	if ok, err := writeStructured(cmd.OutOrStdout(), outputFormat, view); ok {
		return err
	}
	printRecords(cmd.OutOrStdout(), view.Title, view.Records)
	return nil
}

// newFilesUploadCmd creates the 'files upload' command.
func newFilesUploadCmd() *cobra.Command {
	var opts uploadOptions

	cmd := &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload files to the backend",
		Long: `Upload local files one at a time.

A file that fails is reported and the rest still upload. When at least one
file succeeds the catalog is reloaded and the category of the last
successful file is listed.

Directories need --recursive. Hidden files inside directories are skipped
unless --hidden is given.

Examples:
  mediastore files upload cat.png dog.jpg
  mediastore files upload ./albums --recursive --include "*.png,*.jpg"
  mediastore files upload ./albums -r --path "**/2024/**"
  mediastore files upload data.json --max-retries 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeFileUpload(cmd, args, opts)
		},
	}

	opts.register(cmd)

	return cmd
}

// ErrUploadFailed is returned when no file in the batch succeeded, so the
// process exits non-zero.
var ErrUploadFailed = errors.New("upload failed")

func describeState(state models.FilterState) string {
	return fmt.Sprintf("type=%s category=%s ext=%s", state.Type, state.Category, state.Extension)
}
