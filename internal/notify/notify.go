// Package notify provides cross-platform desktop notifications for mediastore.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/mediastore/mediastore-cli/internal/logging"
)

const appTitle = "mediastore"

// Notifier handles desktop notifications.
type Notifier struct {
	logger *logging.Logger
	cfg    Config
	mu     sync.RWMutex

	// send and alert are replaced in tests.
	send  func(title, message string) error
	alert func(title, message string) error
}

// Config holds notification configuration.
type Config struct {
	// Enabled determines if notifications are sent.
	Enabled bool

	// ShowUploadComplete notifies when every file of a batch succeeded.
	ShowUploadComplete bool

	// ShowUploadFailed notifies when at least one file of a batch failed.
	ShowUploadFailed bool

	// ShowConnectivity notifies when the backend cannot be reached.
	ShowConnectivity bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:            true,
		ShowUploadComplete: true,
		ShowUploadFailed:   true,
		ShowConnectivity:   true,
	}
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Notifier{
		logger: logger,
		cfg:    *cfg,
		send: func(title, message string) error {
			// beeep.Notify is cross-platform:
			// - Windows: Uses toast notifications
			// - macOS: Uses NSUserNotificationCenter
			// - Linux: Uses D-Bus notifications
			return beeep.Notify(title, message, "")
		},
		alert: func(title, message string) error {
			return beeep.Alert(title, message, "")
		},
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cfg.Enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg.Enabled
}

func (n *Notifier) config() Config {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg
}

// UploadBatchComplete sends the summary of a finished upload batch.
func (n *Notifier) UploadBatchComplete(success, failed int, message string) {
	cfg := n.config()
	if !cfg.Enabled || success+failed == 0 {
		return
	}

	title := "Upload Complete"
	if failed > 0 {
		if !cfg.ShowUploadFailed {
			return
		}
		title = "Upload Failed"
		if success > 0 {
			title = "Upload Partially Complete"
		}
	} else if !cfg.ShowUploadComplete {
		return
	}

	if err := n.send(title, truncate(message, 100)); err != nil {
		n.logger.Warn().Err(err).Int("success", success).Int("failed", failed).Msg("Failed to send upload notification")
	}
}

// ConnectivityLost tells the user the backend could not be reached.
func (n *Notifier) ConnectivityLost(baseURL string, err error) {
	cfg := n.config()
	if !cfg.Enabled || !cfg.ShowConnectivity || err == nil {
		return
	}

	title := "Backend Unreachable"
	message := fmt.Sprintf("Could not reach %s:\n%s", truncate(baseURL, 60), truncate(err.Error(), 100))

	if sendErr := n.send(title, message); sendErr != nil {
		n.logger.Warn().Err(sendErr).Str("url", baseURL).Msg("Failed to send connectivity notification")
	}
}

// Alert sends an alert notification (error level).
// This is for critical issues that require user attention.
func (n *Notifier) Alert(message string) {
	if !n.IsEnabled() {
		return
	}

	title := appTitle + " Alert"

	// beeep.Alert shows a more prominent notification on some platforms
	if err := n.alert(title, message); err != nil {
		if err := n.send(title, message); err != nil {
			n.logger.Error().Err(err).Str("message", message).Msg("Failed to send alert notification")
		}
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// ParseNotifyConfig parses notification settings from an INI section.
// Expected keys: enabled, show_upload_complete, show_upload_failed, show_connectivity
func ParseNotifyConfig(settings map[string]string) *Config {
	cfg := DefaultConfig()

	if v, ok := settings["enabled"]; ok {
		cfg.Enabled = strings.ToLower(v) == "true"
	}
	if v, ok := settings["show_upload_complete"]; ok {
		cfg.ShowUploadComplete = strings.ToLower(v) == "true"
	}
	if v, ok := settings["show_upload_failed"]; ok {
		cfg.ShowUploadFailed = strings.ToLower(v) == "true"
	}
	if v, ok := settings["show_connectivity"]; ok {
		cfg.ShowConnectivity = strings.ToLower(v) == "true"
	}

	return cfg
}
