package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("expected default BaseURL http://127.0.0.1:8000, got %s", cfg.BaseURL)
	}
	if cfg.SearchMode != SearchModeReplace {
		t.Errorf("expected default search mode replace, got %s", cfg.SearchMode)
	}
	if len(cfg.GroupedCategories) != 2 || cfg.GroupedCategories[0] != "SQL" || cfg.GroupedCategories[1] != "NoSQL" {
		t.Errorf("unexpected default grouped categories: %v", cfg.GroupedCategories)
	}
	if cfg.MinSearchLength != 2 {
		t.Errorf("expected MinSearchLength 2, got %d", cfg.MinSearchLength)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")

	cfg := NewConfig()
	cfg.BaseURL = "https://media.example.com"
	cfg.APIKey = "secret-key-123"
	cfg.Timeout = 45 * time.Second
	cfg.ProxyMode = "basic"
	cfg.ProxyHost = "proxy.corp"
	cfg.ProxyPort = 3128
	cfg.NoProxy = "*.internal"
	cfg.GroupedCategories = []string{"SQL", "NoSQL", "Graph"}
	cfg.SearchMode = SearchModeCompose
	cfg.UploadMaxRetries = 2
	cfg.Notify = false
	cfg.NotifySettings = map[string]string{"show_connectivity": "false"}
	cfg.LogLevel = "debug"
	cfg.LogFile = "mediastore.log"

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(configPath)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %o", info.Mode().Perm())
		}
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.BaseURL != cfg.BaseURL {
		t.Errorf("BaseURL mismatch: expected %s, got %s", cfg.BaseURL, loaded.BaseURL)
	}
	if loaded.APIKey != cfg.APIKey {
		t.Errorf("APIKey mismatch: expected %s, got %s", cfg.APIKey, loaded.APIKey)
	}
	if loaded.Timeout != 45*time.Second {
		t.Errorf("Timeout mismatch: got %v", loaded.Timeout)
	}
	if loaded.ProxyMode != "basic" || loaded.ProxyHost != "proxy.corp" || loaded.ProxyPort != 3128 {
		t.Errorf("proxy mismatch: %s %s %d", loaded.ProxyMode, loaded.ProxyHost, loaded.ProxyPort)
	}
	if loaded.NoProxy != "*.internal" {
		t.Errorf("NoProxy mismatch: got %s", loaded.NoProxy)
	}
	if len(loaded.GroupedCategories) != 3 || loaded.GroupedCategories[2] != "Graph" {
		t.Errorf("GroupedCategories mismatch: got %v", loaded.GroupedCategories)
	}
	if loaded.SearchMode != SearchModeCompose {
		t.Errorf("SearchMode mismatch: got %s", loaded.SearchMode)
	}
	if loaded.UploadMaxRetries != 2 {
		t.Errorf("UploadMaxRetries mismatch: got %d", loaded.UploadMaxRetries)
	}
	if loaded.Notify {
		t.Error("expected Notify to be false")
	}
	if loaded.NotifySettings["show_connectivity"] != "false" {
		t.Errorf("NotifySettings mismatch: got %v", loaded.NotifySettings)
	}
	if loaded.LogLevel != "debug" || loaded.LogFile != "mediastore.log" {
		t.Errorf("logging mismatch: %s %s", loaded.LogLevel, loaded.LogFile)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.BaseURL != NewConfig().BaseURL {
		t.Errorf("expected defaults, got BaseURL %s", cfg.BaseURL)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	content := "[server]\nbase_url = http://files.local:9000\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "http://files.local:9000" {
		t.Errorf("expected file base_url, got %s", cfg.BaseURL)
	}
	if cfg.SearchMode != SearchModeReplace {
		t.Errorf("expected default search mode, got %s", cfg.SearchMode)
	}
	if len(cfg.GroupedCategories) != 2 {
		t.Errorf("expected default grouped categories, got %v", cfg.GroupedCategories)
	}
}

func TestConfigPrecedence(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://env-host:8000")
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv("HTTPS_PROXY", "")

	cfg := NewConfig()
	cfg.BaseURL = "http://file-host:8000"
	cfg.APIKey = "file-key"

	cfg.ApplyEnv()
	if cfg.BaseURL != "http://env-host:8000" {
		t.Errorf("env should override file, got %s", cfg.BaseURL)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("env should override file key, got %s", cfg.APIKey)
	}

	cfg.MergeWithFlags("flag-host:7000/", "", "")
	if cfg.BaseURL != "http://flag-host:7000" {
		t.Errorf("flag should override env and be normalized, got %s", cfg.BaseURL)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("empty flag should not override, got %s", cfg.APIKey)
	}
}

func TestApplyEnvProxy(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvAPIKey, "")
	t.Setenv("HTTPS_PROXY", "http://proxy.corp:3128")

	cfg := NewConfig()
	cfg.ApplyEnv()

	if cfg.ProxyHost != "proxy.corp" || cfg.ProxyPort != 3128 {
		t.Errorf("expected proxy.corp:3128, got %s:%d", cfg.ProxyHost, cfg.ProxyPort)
	}
	if cfg.ProxyMode != "system" {
		t.Errorf("expected proxy mode system, got %s", cfg.ProxyMode)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"empty url", func(c *Config) { c.BaseURL = " " }, ErrMissingBaseURL},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://host" }, ErrInvalidBaseURL},
		{"bad proxy mode", func(c *Config) { c.ProxyMode = "socks" }, ErrInvalidProxyMode},
		{"bad search mode", func(c *Config) { c.SearchMode = "merge" }, ErrInvalidSearchMode},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"too many retries", func(c *Config) { c.UploadMaxRetries = 11 }, ErrInvalidMaxRetries},
		{"zero search length", func(c *Config) { c.MinSearchLength = 0 }, ErrInvalidSearchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := NewConfig()
	cfg.APIKey = "abcdefgh"
	cfg.ProxyPassword = "pw"

	r := cfg.Redacted()
	if r.APIKey != "ab****gh" {
		t.Errorf("unexpected masked key %q", r.APIKey)
	}
	if r.ProxyPassword != "****" {
		t.Errorf("unexpected masked password %q", r.ProxyPassword)
	}
	if cfg.APIKey != "abcdefgh" {
		t.Error("Redacted must not modify the original")
	}
}

func TestResolveLogFile(t *testing.T) {
	if got := ResolveLogFile(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
	abs := filepath.Join(t.TempDir(), "x.log")
	if got := ResolveLogFile(abs); got != abs {
		t.Errorf("absolute path should be kept, got %q", got)
	}
	if got := ResolveLogFile("x.log"); got != filepath.Join(LogDirectory(), "x.log") {
		t.Errorf("bare name should land in LogDirectory, got %q", got)
	}
}
