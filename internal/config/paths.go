package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// LogDirectory returns the directory used for the rotating log file when
// [logging] file is a bare name.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\mediastore\logs
//   - Unix: ~/.config/mediastore/logs
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "mediastore-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "mediastore", "logs")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mediastore-logs")
	}
	return filepath.Join(configDir, "mediastore", "logs")
}

// ResolveLogFile turns the configured log file into an absolute path. Bare
// file names are placed in LogDirectory; an empty value disables file logging.
func ResolveLogFile(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(LogDirectory(), name)
}

// EnsureLogDirectory creates the directory holding path with owner-only access.
func EnsureLogDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0700)
}
