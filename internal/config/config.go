// Package config provides configuration management for the mediastore client.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/mediastore/mediastore-cli/internal/constants"
)

// Config is the effective client configuration.
//
// INI format:
//
//	[server]
//	base_url = http://127.0.0.1:8000
//	api_key =
//	timeout_seconds = 30
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 8080
//	user =
//	password =
//	no_proxy =
//	warmup = false
//
//	[catalog]
//	grouped_categories = SQL,NoSQL
//	search_mode = replace
//	min_search_length = 2
//
//	[upload]
//	max_retries = 0
//	notify = true
//
//	[notify]
//	show_upload_complete = true
//	show_upload_failed = true
//	show_connectivity = true
//
//	[logging]
//	level = info
//	file =
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	ProxyMode     string // no-proxy, system, basic, ntlm
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string
	ProxyWarmup   bool

	GroupedCategories []string
	SearchMode        string // replace or compose
	MinSearchLength   int

	UploadMaxRetries int
	Notify           bool
	// NotifySettings holds the raw [notify] keys, see notify.ParseNotifyConfig.
	NotifySettings map[string]string

	LogLevel string
	LogFile  string
}

// Search modes
const (
	SearchModeReplace = "replace"
	SearchModeCompose = "compose"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvBaseURL = "MEDIASTORE_URL"
	EnvAPIKey  = "MEDIASTORE_API_KEY"
)

// Validation errors
var (
	ErrMissingBaseURL     = errors.New("base_url is required")
	ErrInvalidBaseURL     = errors.New("base_url must be an absolute http(s) URL")
	ErrInvalidProxyMode   = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
	ErrInvalidSearchMode  = errors.New("search_mode must be replace or compose")
	ErrInvalidTimeout     = errors.New("timeout_seconds must be positive")
	ErrInvalidMaxRetries  = errors.New("max_retries must be between 0 and 10")
	ErrInvalidSearchLimit = errors.New("min_search_length must be at least 1")
)

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL:           constants.DefaultBaseURL,
		Timeout:           constants.DefaultRequestTimeout,
		ProxyMode:         "no-proxy",
		ProxyPort:         8080,
		GroupedCategories: append([]string(nil), constants.DefaultGroupedCategories...),
		SearchMode:        SearchModeReplace,
		MinSearchLength:   constants.MinSearchLength,
		Notify:            true,
		LogLevel:          "info",
	}
}

// DefaultConfigPath returns the default path for the config file.
// - Windows: %APPDATA%\mediastore\config
// - Unix: ~/.config/mediastore/config
func DefaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config"), nil
}

func configDir() (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "mediastore"), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "mediastore"), nil
}

// LoadConfig loads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	server := iniFile.Section("server")
	cfg.BaseURL = server.Key("base_url").MustString(cfg.BaseURL)
	cfg.APIKey = server.Key("api_key").String()
	cfg.Timeout = time.Duration(server.Key("timeout_seconds").MustInt(int(cfg.Timeout/time.Second))) * time.Second

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(cfg.ProxyPort)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.ProxyPassword = proxy.Key("password").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	catalog := iniFile.Section("catalog")
	if catalog.HasKey("grouped_categories") {
		cfg.GroupedCategories = splitList(catalog.Key("grouped_categories").String())
	}
	cfg.SearchMode = strings.ToLower(catalog.Key("search_mode").MustString(cfg.SearchMode))
	cfg.MinSearchLength = catalog.Key("min_search_length").MustInt(cfg.MinSearchLength)

	upload := iniFile.Section("upload")
	cfg.UploadMaxRetries = upload.Key("max_retries").MustInt(0)
	cfg.Notify = upload.Key("notify").MustBool(true)
	if iniFile.HasSection("notify") {
		cfg.NotifySettings = iniFile.Section("notify").KeysHash()
	}

	logging := iniFile.Section("logging")
	cfg.LogLevel = logging.Key("level").MustString(cfg.LogLevel)
	cfg.LogFile = logging.Key("file").String()

	return cfg, nil
}

// SaveConfig saves configuration to an INI file.
// Creates parent directories if they don't exist. The API key and proxy
// password are stored in the file, so it is written with 0600 permissions.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()
	sections := []struct {
		name   string
		values [][2]string
	}{
		{"server", [][2]string{
			{"base_url", cfg.BaseURL},
			{"api_key", cfg.APIKey},
			{"timeout_seconds", strconv.Itoa(int(cfg.Timeout / time.Second))},
		}},
		{"proxy", [][2]string{
			{"mode", cfg.ProxyMode},
			{"host", cfg.ProxyHost},
			{"port", strconv.Itoa(cfg.ProxyPort)},
			{"user", cfg.ProxyUser},
			{"password", cfg.ProxyPassword},
			{"no_proxy", cfg.NoProxy},
			{"warmup", strconv.FormatBool(cfg.ProxyWarmup)},
		}},
		{"catalog", [][2]string{
			{"grouped_categories", strings.Join(cfg.GroupedCategories, ",")},
			{"search_mode", cfg.SearchMode},
			{"min_search_length", strconv.Itoa(cfg.MinSearchLength)},
		}},
		{"upload", [][2]string{
			{"max_retries", strconv.Itoa(cfg.UploadMaxRetries)},
			{"notify", strconv.FormatBool(cfg.Notify)},
		}},
		{"logging", [][2]string{
			{"level", cfg.LogLevel},
			{"file", cfg.LogFile},
		}},
	}
	if len(cfg.NotifySettings) > 0 {
		keys := make([]string, 0, len(cfg.NotifySettings))
		for k := range cfg.NotifySettings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([][2]string, 0, len(keys))
		for _, k := range keys {
			values = append(values, [2]string{k, cfg.NotifySettings[k]})
		}
		sections = append(sections, struct {
			name   string
			values [][2]string
		}{"notify", values})
	}
	for _, s := range sections {
		section, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.values {
			section.Key(kv[0]).SetValue(kv[1])
		}
	}

	// Temporary file + rename so a crash never leaves a half-written config
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables on top of file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && c.ProxyHost == "" {
		c.parseProxyURL(v)
	}
}

// MergeWithFlags applies command-line overrides (highest priority).
func (c *Config) MergeWithFlags(baseURL, apiKey, proxyMode string) {
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	if apiKey != "" {
		c.APIKey = apiKey
	}
	if proxyMode != "" {
		c.ProxyMode = proxyMode
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http") {
		c.BaseURL = "http://" + c.BaseURL
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
}

// parseProxyURL parses a proxy URL from environment variable
func (c *Config) parseProxyURL(proxyURL string) {
	u, err := url.Parse(proxyURL)
	if err != nil || u.Host == "" {
		u, err = url.Parse("http://" + proxyURL)
		if err != nil {
			return
		}
	}
	c.ProxyHost = u.Hostname()
	if port, err := strconv.Atoi(u.Port()); err == nil {
		c.ProxyPort = port
	}
	if c.ProxyHost != "" && (c.ProxyMode == "no-proxy" || c.ProxyMode == "") {
		c.ProxyMode = "system"
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	switch strings.ToLower(c.ProxyMode) {
	case "", "no-proxy", "system", "basic", "ntlm":
	default:
		return ErrInvalidProxyMode
	}
	switch c.SearchMode {
	case SearchModeReplace, SearchModeCompose:
	default:
		return ErrInvalidSearchMode
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.UploadMaxRetries < 0 || c.UploadMaxRetries > 10 {
		return ErrInvalidMaxRetries
	}
	if c.MinSearchLength < 1 {
		return ErrInvalidSearchLimit
	}
	return nil
}

// Redacted returns a copy safe for display, with secrets masked.
func (c *Config) Redacted() Config {
	out := *c
	out.APIKey = maskSecret(c.APIKey)
	out.ProxyPassword = maskSecret(c.ProxyPassword)
	out.GroupedCategories = append([]string(nil), c.GroupedCategories...)
	if c.NotifySettings != nil {
		out.NotifySettings = make(map[string]string, len(c.NotifySettings))
		for k, v := range c.NotifySettings {
			out.NotifySettings[k] = v
		}
	}
	return out
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
