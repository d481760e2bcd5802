package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediastore/mediastore-cli/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mediastore configuration",
		Long: `Configuration management commands for mediastore.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test the backend connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath returns --config or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for mediastore.

Press Enter to accept the value shown in brackets.
Use --force to overwrite existing configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path, err := configPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg := config.NewConfig()
			p := newPrompter(cmd.InOrStdin(), out)

			fmt.Fprintln(out, "mediastore Configuration Setup")
			fmt.Fprintln(out, "==============================")
			fmt.Fprintln(out)

			cfg.BaseURL = p.ask("Backend URL", cfg.BaseURL)
			cfg.APIKey = p.ask("API key (optional)", "")

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Upload Settings (press Enter for defaults)")
			fmt.Fprintln(out, "------------------------------------------")
			cfg.UploadMaxRetries = p.askInt("Retries per file", cfg.UploadMaxRetries, 0, 10)
			cfg.Notify = p.askBool("Desktop notifications", cfg.Notify)

			fmt.Fprintln(out)
			if p.askBool("Configure proxy?", false) {
				fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
				cfg.ProxyMode = p.ask("Proxy mode", "system")
				if cfg.ProxyMode != "no-proxy" {
					cfg.ProxyHost = p.ask("Proxy host", "")
					cfg.ProxyPort = p.askInt("Proxy port", cfg.ProxyPort, 1, 65535)
				}
				if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
					cfg.ProxyUser = p.ask("Proxy user", "")
					cfg.ProxyPassword = p.ask("Proxy password", "")
				}
			}

			cfg.MergeWithFlags("", "", "")
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")

			fmt.Fprintln(out)
			fmt.Fprintf(out, "✓ Configuration saved to: %s\n", path)
			fmt.Fprintln(out, "Test your configuration with: mediastore config test")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration, merged from:
  1. Configuration file (~/.config/mediastore/config)
  2. Environment variables (MEDIASTORE_URL, MEDIASTORE_API_KEY, HTTPS_PROXY)
  3. Command-line flags (--api-url, --api-key, --proxy-mode)

Priority: flags > environment > config file > defaults
Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}

			cfg, err := config.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ApplyEnv()
			cfg.MergeWithFlags(apiBaseURL, apiKey, proxyMode)
			shown := cfg.Redacted()

			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, outputFormat, shown); ok {
				return err
			}

			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Server:")
			fmt.Fprintf(out, "  Base URL: %s\n", shown.BaseURL)
			fmt.Fprintf(out, "  API Key:  %s\n", orNotSet(shown.APIKey))
			fmt.Fprintf(out, "  Timeout:  %s\n", shown.Timeout)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy:")
			fmt.Fprintf(out, "  Mode: %s\n", shown.ProxyMode)
			if shown.ProxyHost != "" {
				fmt.Fprintf(out, "  Host: %s:%d\n", shown.ProxyHost, shown.ProxyPort)
			}
			if shown.ProxyUser != "" {
				fmt.Fprintf(out, "  User: %s (password %s)\n", shown.ProxyUser, orNotSet(shown.ProxyPassword))
			}
			if shown.NoProxy != "" {
				fmt.Fprintf(out, "  No proxy: %s\n", shown.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Catalog:")
			fmt.Fprintf(out, "  Grouped categories: %s\n", strings.Join(shown.GroupedCategories, ", "))
			fmt.Fprintf(out, "  Search mode:        %s\n", shown.SearchMode)
			fmt.Fprintf(out, "  Min search length:  %d\n", shown.MinSearchLength)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Upload:")
			fmt.Fprintf(out, "  Max retries:   %d\n", shown.UploadMaxRetries)
			fmt.Fprintf(out, "  Notifications: %t\n", shown.Notify)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Logging:")
			fmt.Fprintf(out, "  Level: %s\n", shown.LogLevel)
			if shown.LogFile != "" {
				fmt.Fprintf(out, "  File:  %s\n", config.ResolveLogFile(shown.LogFile))
			}
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			return nil
		},
	}

	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the backend connection",
		Long:  `Validate the configuration and check the backend once it loads.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := getAPIClient()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Testing connection to %s...\n", cfg.BaseURL)
			return runHealthCheck(cmd, client, cfg, true)
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path, err := configPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}
			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n\n", path)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: ✓ File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: mediastore config init")
			}
			return nil
		},
	}

	return cmd
}

func orNotSet(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}

// prompter reads answers line by line. At end of input every question takes
// its default.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) ask(question, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	line, _ := p.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func (p *prompter) askInt(question string, def, min, max int) int {
	for {
		answer := p.ask(question, strconv.Itoa(def))
		v, err := strconv.Atoi(answer)
		if err == nil && v >= min && v <= max {
			return v
		}
		fmt.Fprintf(p.out, "  Error: enter a number between %d and %d\n", min, max)
		if p.exhausted() {
			return def
		}
	}
}

func (p *prompter) askBool(question string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", question, hint)
	line, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

func (p *prompter) exhausted() bool {
	_, err := p.in.Peek(1)
	return err != nil
}
