// Package config loads runtime configuration for the postplanner CLI.
//
// Values are applied in order: built-in defaults, an optional JSON or YAML
// file, POSTPLANNER_CLIENT_* environment variables (a .env file in the
// working directory is read first), and finally the persistent flags of
// the command tree, which the cli package applies on top of Load.
package config

import (
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/filex"
)

// AppName names the per-user data directory.
const AppName = "postplanner"

// DatabaseFileName is the local state file inside the data directory.
const DatabaseFileName = "postplanner.db"

// Config holds runtime settings for the postplanner CLI.
type Config struct {
	ServerEndpointAddr string
	// DatabasePath is the local SQLite file. Empty means DatabaseFileName
	// inside the per-user data directory.
	DatabasePath   string
	LogLevel       string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = ""
	c.LogLevel = "warn"
	c.RequestTimeout = 30 * time.Second
}

// Load builds a Config from defaults, the file at path (skipped when empty)
// and the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, path); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DatabaseFile resolves the local database path, creating the data
// directory when the default location is used.
func (c *Config) DatabaseFile() (string, error) {
	if c.DatabasePath != "" {
		return c.DatabasePath, nil
	}
	dir, err := filex.DataDir(AppName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFileName), nil
}
