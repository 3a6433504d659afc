// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultBackend   = "json"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultUsers returns the users seeded on first run.
func DefaultUsers() []string {
	return []string{"user1", "user2"}
}

// Config holds the full configuration for taskdeck.
type Config struct {
	// Paths
	DataFile string `toml:"data_file"`

	// Storage backend: json or sqlite
	Backend string `toml:"backend"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // text, json, logfmt

	// Users seeded at startup when missing from the store
	Users []string `toml:"users"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskdeck/taskdeck.toml)
// 3. Project config file (taskdeck.toml in current directory)
// 4. Environment variables (TASKDECK_*)
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Backend = DefaultBackend
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Users = DefaultUsers()
	cfg.DataFile = filepath.Join(configDir(), "tasks.json")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".taskdeck")
}

func findUserConfigFile() string {
	path := filepath.Join(configDir(), "taskdeck.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func findProjectConfigFile() string {
	for _, name := range []string{"taskdeck.toml", ".taskdeck.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKDECK_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("TASKDECK_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKDECK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TASKDECK_USERS"); v != "" {
		cfg.Users = splitList(v)
	}
}

func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	dataFile := fs.String("data", "", "Path to the task data file")
	backend := fs.String("backend", "", "Storage backend: json or sqlite")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "Log format: text, json, logfmt")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	return nil
}

func finalize(cfg *Config) error {
	switch cfg.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("unknown backend %q (use json or sqlite)", cfg.Backend)
	}

	cfg.DataFile = expandHome(cfg.DataFile)
	if dir := filepath.Dir(cfg.DataFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
