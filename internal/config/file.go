package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of tracker.yaml.
type File struct {
	Backend string `yaml:"repo-backend,omitempty"`
	DBPath  string `yaml:"db-path,omitempty"`
}

// WriteFile writes a tracker.yaml at path, creating parent directories as
// needed. It refuses to overwrite an existing file.
func WriteFile(path string, f File) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile parses a tracker.yaml without touching the singleton. Used by
// commands that inspect or migrate configuration files.
func ReadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}
