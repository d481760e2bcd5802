package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mediastore/mediastore-cli/internal/config"
)

// TestConfigCmd tests the config command group
func TestConfigCmd(t *testing.T) {
	cmd := newConfigCmd()
	if cmd == nil {
		t.Fatal("newConfigCmd() returned nil")
	}

	if cmd.Use != "config" {
		t.Errorf("Expected Use='config', got '%s'", cmd.Use)
	}

	subcommands := cmd.Commands()
	expectedSubs := []string{"init", "show", "test", "path"}

	if len(subcommands) != len(expectedSubs) {
		t.Errorf("Expected %d subcommands, got %d", len(expectedSubs), len(subcommands))
	}

	foundSubs := make(map[string]bool)
	for _, sub := range subcommands {
		foundSubs[sub.Name()] = true
		if sub.Short == "" {
			t.Errorf("Subcommand '%s' has empty Short description", sub.Name())
		}
		if sub.RunE == nil {
			t.Errorf("Subcommand '%s' has no RunE function", sub.Name())
		}
	}

	for _, expected := range expectedSubs {
		if !foundSubs[expected] {
			t.Errorf("Subcommand '%s' not found", expected)
		}
	}
}

// TestConfigInit tests the config init command structure
func TestConfigInit(t *testing.T) {
	cmd := newConfigInitCmd()
	if cmd.Flags().Lookup("force") == nil {
		t.Error("--force flag not found")
	}
}

// TestConfigInitWritesAnswers runs init with scripted answers
func TestConfigInitWritesAnswers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config")
	answers := strings.Join([]string{
		"localhost:9000", // backend URL, scheme added
		"my-key",         // API key
		"11",             // retries out of range
		"2",              // retries
		"n",              // notifications
		"",               // no proxy
	}, "\n") + "\n"

	out, _, err := runCLI(t, answers, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Configuration saved to") {
		t.Errorf("missing confirmation in output:\n%s", out)
	}
	if !strings.Contains(out, "enter a number between 0 and 10") {
		t.Errorf("out-of-range answer was not rejected:\n%s", out)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL = %q, want http://localhost:9000", cfg.BaseURL)
	}
	if cfg.APIKey != "my-key" {
		t.Errorf("APIKey = %q, want my-key", cfg.APIKey)
	}
	if cfg.UploadMaxRetries != 2 {
		t.Errorf("UploadMaxRetries = %d, want 2", cfg.UploadMaxRetries)
	}
	if cfg.Notify {
		t.Error("Notify should be false")
	}
	if cfg.ProxyMode != "no-proxy" {
		t.Errorf("ProxyMode = %q, want no-proxy", cfg.ProxyMode)
	}
}

// TestConfigInitDefaultsOnEmptyInput accepts every default
func TestConfigInitDefaultsOnEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	if _, _, err := runCLI(t, "", "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	want := config.NewConfig()
	if cfg.BaseURL != want.BaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, want.BaseURL)
	}
	if cfg.SearchMode != config.SearchModeReplace {
		t.Errorf("SearchMode = %q, want replace", cfg.SearchMode)
	}
}

// TestConfigInitKeepsExisting refuses to overwrite without --force
func TestConfigInitKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	original := "[server]\nbase_url = http://example.test\n"
	if err := os.WriteFile(path, []byte(original), 0600); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "http://other.test\n", "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("expected 'already exists' message, got:\n%s", out)
	}

	data, _ := os.ReadFile(path)
	if string(data) != original {
		t.Error("existing config was modified")
	}

	if _, _, err := runCLI(t, "http://other.test\n", "--config", path, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force failed: %v", err)
	}
	cfg, _ := config.LoadConfig(path)
	if cfg.BaseURL != "http://other.test" {
		t.Errorf("BaseURL = %q after --force", cfg.BaseURL)
	}
}

// TestConfigShowMasksSecrets checks the key never appears in clear
func TestConfigShowMasksSecrets(t *testing.T) {
	path := writeConfig(t, "http://example.test", "[proxy]\nmode = basic\nhost = proxy.test\nuser = bob\npassword = hunter22")

	tests := []struct {
		name string
		args []string
	}{
		{"table", []string{"--config", path, "--api-key", "supersecretkey", "config", "show"}},
		{"json", []string{"--config", path, "--api-key", "supersecretkey", "-o", "json", "config", "show"}},
		{"yaml", []string{"--config", path, "--api-key", "supersecretkey", "-o", "yaml", "config", "show"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, "", tt.args...)
			if err != nil {
				t.Fatalf("config show failed: %v", err)
			}
			if strings.Contains(out, "supersecretkey") || strings.Contains(out, "hunter22") {
				t.Errorf("secret leaked:\n%s", out)
			}
			if !strings.Contains(out, "http://example.test") {
				t.Errorf("base URL missing:\n%s", out)
			}
		})
	}
}

// TestConfigShowJSONFields decodes the JSON form
func TestConfigShowJSONFields(t *testing.T) {
	path := writeConfig(t, "http://example.test")

	out, _, err := runCLI(t, "", "--config", path, "-o", "json", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}

	var shown config.Config
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if shown.Notify {
		t.Error("Notify should reflect the file (false)")
	}
}

// TestConfigPath tests the config path command
func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	out, _, err := runCLI(t, "", "--config", path, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(out, "from --config flag") || !strings.Contains(out, path) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "File does not exist") {
		t.Errorf("expected missing-file status:\n%s", out)
	}
}

// TestConfigDefaultPath tests the default config path function
func TestConfigDefaultPath(t *testing.T) {
	path, err := config.DefaultConfigPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Error("Default config path is not absolute")
	}
}

// TestConfigTestRejectsInvalidConfig validates before probing
func TestConfigTestRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "http://example.test", "[catalog]\nsearch_mode = fuzzy")

	_, _, err := runCLI(t, "", "--config", path, "config", "test")
	if err == nil || !strings.Contains(err.Error(), "search_mode") {
		t.Errorf("expected search_mode validation error, got %v", err)
	}
}
