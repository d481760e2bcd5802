package cli

import (
	"github.com/spf13/cobra"

	"github.com/mediastore/mediastore-cli/internal/util/filter"
)

// AddShortcuts adds shortcut commands to the root command.
// Shortcuts provide convenient aliases for commonly-used operations.
func AddShortcuts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newUploadShortcut())
	rootCmd.AddCommand(newLsShortcut())
}

// newUploadShortcut creates the 'upload' shortcut command.
// Shortcut for: files upload
func newUploadShortcut() *cobra.Command {
	var opts uploadOptions

	cmd := &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload files (shortcut for 'files upload')",
		Long: `Shortcut for uploading files to the backend.

Equivalent to: mediastore files upload <files>

Examples:
  mediastore upload cat.png data.json
  mediastore upload ./albums -r --exclude "*.tmp"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeFileUpload(cmd, args, opts)
		},
	}

	opts.register(cmd)

	return cmd
}

// newLsShortcut creates the 'ls' shortcut command.
// Shortcut for: files list [--category C] [--ext E]
func newLsShortcut() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "ls [category] [extension]",
		Short: "List files (shortcut for 'files list')",
		Long: `Shortcut for listing the catalog.

Equivalent to: mediastore files list --category <category> --ext <extension>

Examples:
  mediastore ls
  mediastore ls Images
  mediastore ls Images png
  mediastore ls NoSQL`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				flags.category = args[0]
			}
			if len(args) > 1 {
				flags.extension = args[1]
			}

			store, err := loadCatalog(cmd, "")
			if err != nil {
				return err
			}

			view := store.ApplyFilters(flags.state())
			view.Records = filter.ApplyToRecords(view.Records, flags.nameFilter())
			return renderView(cmd, view)
		},
	}

	cmd.Flags().StringVarP(&flags.fileType, "type", "t", "all", "File type: all, image, video, json, text, other")

	return cmd
}
