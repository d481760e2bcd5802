package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediastore/mediastore-cli/internal/api"
	"github.com/mediastore/mediastore-cli/internal/config"
)

// healthTimeout bounds the whole check including retries.
const healthTimeout = 30 * time.Second

// newHealthCmd creates the 'health' command.
func newHealthCmd() *cobra.Command {
	var noNotify bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Long: `Check the backend's /health endpoint.

Network errors and server errors are retried with backoff. When the backend
stays unreachable a desktop notification is shown and the command exits
non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := getAPIClient()
			if err != nil {
				return err
			}
			return runHealthCheck(cmd, client, cfg, noNotify)
		},
	}

	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "Do not show a desktop notification on failure")

	return cmd
}

func runHealthCheck(cmd *cobra.Command, client *api.Client, cfg *config.Config, noNotify bool) error {
	log := GetLogger()

	ctx, cancel := context.WithTimeout(commandContext(cmd), healthTimeout)
	defer cancel()

	status, err := client.CheckHealth(ctx)
	if err != nil {
		log.Error().Err(err).Str("url", cfg.BaseURL).Msg("Health check failed")
		newNotifier(cfg, noNotify).ConnectivityLost(cfg.BaseURL, err)
		return fmt.Errorf("backend at %s is not healthy: %w", cfg.BaseURL, err)
	}

	log.Debug().Int("status", status.StatusCode).Dur("latency", status.Latency).Msg("Health check passed")

	out := cmd.OutOrStdout()
	if ok, err := writeStructured(out, outputFormat, status); ok {
		return err
	}
	fmt.Fprintf(out, "✓ Backend healthy: %s (HTTP %d, %s)\n",
		cfg.BaseURL, status.StatusCode, status.Latency.Round(time.Millisecond))
	return nil
}
