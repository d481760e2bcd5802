// Package cli provides the command-line interface for mediastore.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mediastore/mediastore-cli/internal/config"
	"github.com/mediastore/mediastore-cli/internal/logging"
	"github.com/mediastore/mediastore-cli/internal/version"
)

var (
	// Global flags
	cfgFile      string
	apiKey       string
	apiBaseURL   string
	proxyMode    string
	outputFormat string
	verbose      bool
	debug        bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mediastore",
		Short: "Browse and upload files to a media storage backend",
		Long: `mediastore ` + version.Version + ` - Built: ` + version.BuildTime + `

Command-line client for a media storage backend. Lists the file catalog,
filters it by type, category and extension, searches it by name, and
uploads local files one at a time, reporting where each one landed.

Configuration is read from ~/.config/mediastore/config (see 'config path').
Priority: flags > environment (MEDIASTORE_URL, MEDIASTORE_API_KEY) > file > defaults`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(outputFormat); err != nil {
				return err
			}
			setupLogger(cmd)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Backend API key (overrides all other sources)")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&proxyMode, "proxy-mode", "", "Proxy mode: no-proxy, system, basic, ntlm")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatTable, "Output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	// main prints the error once; usage is only shown for --help
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// setupLogger builds the global logger from the config file. A config that
// fails to load only costs the file log and level; the command itself reports
// the error when it needs the config.
func setupLogger(cmd *cobra.Command) {
	level := zerolog.InfoLevel
	var logFile string

	if cfg, err := config.LoadConfig(cfgFile); err == nil {
		level = logging.ParseLevel(cfg.LogLevel)
		if path := config.ResolveLogFile(cfg.LogFile); path != "" {
			if err := config.EnsureLogDirectory(path); err == nil {
				logFile = path
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: log file disabled: %v\n", err)
			}
		}
	}
	if verbose || debug {
		level = zerolog.DebugLevel
	}

	logging.SetGlobalLevel(level)
	logger = logging.NewLogger(logging.Options{
		Console: cmd.ErrOrStderr(),
		File:    logFile,
	})
}

func newCompletionCmd() *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Enable tab-completion for mediastore commands",
		Long: `Generate shell completion scripts to enable tab-completion for mediastore.

QUICK START:

  zsh:
    mkdir -p ~/.zsh/completions
    mediastore completion zsh > ~/.zsh/completions/_mediastore
    # Then add to ~/.zshrc: fpath=(~/.zsh/completions $fpath)

  bash (Linux):
    mediastore completion bash | sudo tee /etc/bash_completion.d/mediastore

  fish:
    mediastore completion fish > ~/.config/fish/completions/mediastore.fish

  PowerShell:
    mediastore completion powershell >> $PROFILE`,
	}

	completionCmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate bash completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate zsh completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate fish completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "powershell",
		Short: "Generate PowerShell completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		},
	})

	return completionCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// First signal cancels; the file being uploaded still finishes. A second
	// signal exits immediately.
	go func() {
		received := 0
		for sig := range sigChan {
			if sig == nil {
				continue
			}
			received++
			if received > 1 {
				fmt.Fprintf(os.Stderr, "\nReceived %v again, exiting\n", sig)
				os.Exit(130)
			}
			fmt.Fprintf(os.Stderr, "\n\nReceived signal %v, cancelling remaining uploads...\n", sig)
			fmt.Fprintf(os.Stderr, "   Press Ctrl+C again to exit immediately.\n\n")
			cancelFunc()
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.ExecuteContext(rootContext)

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newConfigCmd())

	AddShortcuts(rootCmd)
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// commandContext prefers the context cobra was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return GetContext()
}
