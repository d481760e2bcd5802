package cli

import (
	"fmt"

	"github.com/mediastore/mediastore-cli/internal/api"
	"github.com/mediastore/mediastore-cli/internal/catalog"
	"github.com/mediastore/mediastore-cli/internal/config"
	"github.com/mediastore/mediastore-cli/internal/events"
	"github.com/mediastore/mediastore-cli/internal/notify"
)

// loadConfig reads the config file and applies environment and flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.MergeWithFlags(apiBaseURL, apiKey, proxyMode)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// getAPIClient loads configuration and creates an API client.
// This is the standard way to get an API client in CLI commands.
func getAPIClient() (*api.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}
	client.SetLogger(GetLogger())

	return client, cfg, nil
}

// newStore creates a catalog store backed by client. mode, when set,
// overrides the configured search mode.
func newStore(cfg *config.Config, client *api.Client, mode string, bus *events.EventBus) (*catalog.Store, error) {
	opts := catalog.OptionsFromConfig(cfg)
	if mode != "" {
		switch catalog.SearchMode(mode) {
		case catalog.SearchReplace, catalog.SearchCompose:
			opts.SearchMode = catalog.SearchMode(mode)
		default:
			return nil, fmt.Errorf("--mode must be %s or %s, got %q", catalog.SearchReplace, catalog.SearchCompose, mode)
		}
	}
	return catalog.NewStore(client, opts, bus, GetLogger()), nil
}

// newNotifier builds the desktop notifier from [upload] notify and the
// [notify] section.
func newNotifier(cfg *config.Config, disabled bool) *notify.Notifier {
	ncfg := notify.ParseNotifyConfig(cfg.NotifySettings)
	ncfg.Enabled = ncfg.Enabled && cfg.Notify && !disabled
	return notify.NewNotifier(ncfg, GetLogger())
}
