// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDatabasePath is where the audit database lives unless configured otherwise.
const DefaultDatabasePath = "$HOME/.local/share/finpulse/finpulse.db"

// DefaultConfigDir is searched for config.yaml and .env files.
const DefaultConfigDir = "~/.config/finpulse"

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return os.ExpandEnv(path)
}
