package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediastore/mediastore-cli/internal/events"
	"github.com/mediastore/mediastore-cli/internal/localfs"
	"github.com/mediastore/mediastore-cli/internal/progress"
	"github.com/mediastore/mediastore-cli/internal/upload"
	"github.com/mediastore/mediastore-cli/internal/util/filter"
	"github.com/mediastore/mediastore-cli/internal/util/paths"
)

// uploadOptions are the flags shared by 'files upload' and the 'upload' shortcut.
type uploadOptions struct {
	recursive  bool
	hidden     bool
	include    []string
	exclude    []string
	paths      []string
	maxRetries int
	noNotify   bool
}

func (o *uploadOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.recursive, "recursive", "r", false, "Upload the contents of directory arguments")
	cmd.Flags().BoolVar(&o.hidden, "hidden", false, "Include hidden files found inside directories")
	cmd.Flags().StringSliceVar(&o.include, "include", nil, "Only upload names matching these globs (comma-separated)")
	cmd.Flags().StringSliceVar(&o.exclude, "exclude", nil, "Skip names matching these globs (comma-separated)")
	cmd.Flags().StringSliceVar(&o.paths, "path", nil, "Only upload paths matching these globs, ** spans directories")
	cmd.Flags().IntVar(&o.maxRetries, "max-retries", -1, "Retries per file on network or server errors (default from config)")
	cmd.Flags().BoolVar(&o.noNotify, "no-notify", false, "Do not show a desktop notification when the batch ends")
}

// selectFiles expands args and applies the name filters.
func selectFiles(args []string, opts uploadOptions) ([]upload.LocalFile, error) {
	entries, err := localfs.Expand(args, localfs.ExpandOptions{
		Recursive:     opts.recursive,
		IncludeHidden: opts.hidden,
	})
	if err != nil {
		return nil, err
	}

	nf := filter.Config{Include: opts.include, Exclude: opts.exclude, Paths: opts.paths}
	if !nf.IsEmpty() {
		all := make([]string, len(entries))
		for i, e := range entries {
			all[i] = e.Path
		}
		keep := make(map[string]bool)
		for _, p := range filter.ApplyToPaths(all, nf) {
			keep[p] = true
		}

		kept := entries[:0]
		for _, e := range entries {
			if keep[e.Path] {
				kept = append(kept, e)
			}
		}
		GetLogger().Debug().Int("selected", len(kept)).Int("skipped", len(entries)-len(kept)).Msg("Applied name filters")
		entries = kept
	}

	return upload.FromEntries(entries), nil
}

// warnCollisions reports files that will be stored under the same name.
func warnCollisions(files []upload.LocalFile) {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	for _, c := range paths.FindCollisions(names) {
		GetLogger().Warn().
			Str("name", c.Name).
			Strs("paths", c.Paths).
			Msg("Several files share one upload name; the backend keeps the last")
	}
}

// executeFileUpload is the common upload logic for 'files upload' and the
// 'upload' shortcut.
func executeFileUpload(cmd *cobra.Command, args []string, opts uploadOptions) error {
	log := GetLogger()

	files, err := selectFiles(args, opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return upload.ErrNoFiles
	}
	warnCollisions(files)

	client, cfg, err := getAPIClient()
	if err != nil {
		return err
	}

	var bus *events.EventBus
	if verbose || debug {
		bus = events.NewEventBus(0)
		stop := traceEvents(bus, log)
		defer stop()
	}

	store, err := newStore(cfg, client, "", bus)
	if err != nil {
		return err
	}

	retries := cfg.UploadMaxRetries
	if opts.maxRetries >= 0 {
		retries = opts.maxRetries
	}

	coordinator := upload.NewCoordinator(client, store,
		upload.WithReporter(progress.NewBatchReporter(len(files), cmd.ErrOrStderr())),
		upload.WithEventBus(bus),
		upload.WithNotifier(newNotifier(cfg, opts.noNotify)),
		upload.WithLogger(log),
		upload.WithMaxRetries(retries),
	)

	outcome, err := coordinator.UploadBatch(commandContext(cmd), files)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if ok, err := writeStructured(out, outputFormat, outcome); ok {
		if err != nil {
			return err
		}
	} else {
		printOutcome(out, outcome)
		if outcome.Reloaded {
			nav := outcome.Navigation()
			log.Debug().Str("filter", describeState(nav)).Msg("Showing upload destination")
			view := store.ApplyFilters(nav)
			fmt.Fprintln(out)
			printRecords(out, view.Title, view.Records)
		}
	}

	if outcome.ReloadErr != nil {
		log.Warn().Err(outcome.ReloadErr).Msg("Files were uploaded but the catalog could not be refreshed")
	}
	if outcome.Status() == upload.StatusFailure {
		return fmt.Errorf("%w: %s", ErrUploadFailed, outcome.Message())
	}
	return nil
}

func printOutcome(w io.Writer, o *upload.Outcome) {
	fmt.Fprintln(w, o.Message())
	for _, f := range o.Failures() {
		fmt.Fprintf(w, "  ✗ %s: %s\n", f.Name, f.Error)
	}
	if o.SuccessCount > 0 {
		fmt.Fprintf(w, "Last stored in %s\n", landing(o))
	}
}

func landing(o *upload.Outcome) string {
	var b strings.Builder
	b.WriteString(o.LastCategory)
	if o.LastExtension != "" {
		b.WriteString(" (" + o.LastExtension + ")")
	}
	return b.String()
}
