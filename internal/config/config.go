// Package config holds the process-wide configuration singleton. Values are
// resolved with the usual precedence: command-line flags, then environment
// variables, then tracker.yaml, then built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. The env replacer maps them to ISSUE_REPO_BACKEND and
// ISSUE_DB_PATH.
const (
	KeyBackend = "repo-backend"
	KeyDBPath  = "db-path"
)

// Defaults.
const (
	DefaultBackend = "sqlite"
	DefaultDBPath  = "issues.db"
)

// FileName is the optional per-project configuration file.
const FileName = "tracker.yaml"

var v *viper.Viper

// Initialize sets up the configuration singleton. Call once at startup,
// before any accessor.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	// Locate tracker.yaml explicitly rather than via search paths: project
	// file first (walking up from the working directory), then the user
	// config directory.
	configFileSet := false
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			path := filepath.Join(dir, FileName)
			if _, err := os.Stat(path); err == nil {
				v.SetConfigFile(path)
				configFileSet = true
				break
			}
		}
	}
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			path := filepath.Join(configDir, "trk", FileName)
			if _, err := os.Stat(path); err == nil {
				v.SetConfigFile(path)
				configFileSet = true
			}
		}
	}

	// ISSUE_REPO_BACKEND and ISSUE_DB_PATH override the file.
	v.SetEnvPrefix("ISSUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyBackend, DefaultBackend)
	v.SetDefault(KeyDBPath, DefaultDBPath)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// ResetForTesting clears the singleton so Initialize can run again with a
// different environment. Not thread-safe; test use only.
func ResetForTesting() {
	v = nil
}

// BindFlags gives command-line flags the highest precedence for the keys
// they cover. Call after Initialize with the command's parsed flag set.
func BindFlags(flags *pflag.FlagSet) error {
	if v == nil {
		return fmt.Errorf("config not initialized")
	}
	if f := flags.Lookup("backend"); f != nil {
		if err := v.BindPFlag(KeyBackend, f); err != nil {
			return err
		}
	}
	if f := flags.Lookup("db"); f != nil {
		if err := v.BindPFlag(KeyDBPath, f); err != nil {
			return err
		}
	}
	return nil
}

// Backend returns the configured storage backend name. Only "memory" selects
// the in-memory backend; any other value, including unset, means sqlite.
func Backend() string {
	if v == nil {
		return DefaultBackend
	}
	if strings.EqualFold(strings.TrimSpace(v.GetString(KeyBackend)), "memory") {
		return "memory"
	}
	return DefaultBackend
}

// DBPath returns the configured database path for the relational backend.
func DBPath() string {
	if v == nil {
		return DefaultDBPath
	}
	return v.GetString(KeyDBPath)
}

// ConfigFileUsed reports which tracker.yaml was loaded, or "".
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
