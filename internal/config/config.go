// Package config handles configuration loading and defaults.
//
// Sources in priority order: defaults, then a TOML config file
// (weekly-planner.toml in the working directory, else
// ~/.weekly-planner/config.toml), then environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

// Default values.
const (
	DefaultDataDir = "data"
	DefaultBackend = BackendFiles
)

// ProjectConfigFile is the per-project config filename.
const ProjectConfigFile = "weekly-planner.toml"

// Config holds the full configuration for the planner server.
type Config struct {
	// DataDir is the root for persisted records: sections/ and
	// weekly-plans/ for the files backend, planner.db for sqlite.
	DataDir string `toml:"data_dir"`

	// Backend selects the storage adapter: "files" or "sqlite".
	Backend string `toml:"backend"`
}

// Load resolves the effective configuration.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir: DefaultDataDir,
		Backend: DefaultBackend,
	}

	if path := findConfigFile(); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("WEEKLY_PLANNER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("WEEKLY_PLANNER_BACKEND"); v != "" {
		cfg.Backend = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFiles, BackendSQLite:
	default:
		return fmt.Errorf("invalid backend %q: must be %q or %q", c.Backend, BackendFiles, BackendSQLite)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// SectionsDir returns the directory holding section records.
func (c *Config) SectionsDir() string {
	return filepath.Join(c.DataDir, "sections")
}

// PlansDir returns the directory holding weekly plan documents.
func (c *Config) PlansDir() string {
	return filepath.Join(c.DataDir, "weekly-plans")
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if _, err := os.Stat(ProjectConfigFile); err == nil {
		return ProjectConfigFile
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".weekly-planner", "config.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
