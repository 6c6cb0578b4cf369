package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	AppName        = "tskctl"
	DbName         = "index.db"
	ConfigFileName = "config.yaml"

	// ProjectConfigFile sits next to a project's .tasks store.
	ProjectConfigFile = ".tskctl.yaml"

	envPrefix = "TSKCTL"
)

// Selectors for choosing a task when no id is given.
const (
	SelectorPicker = "picker"
	SelectorPrompt = "prompt"
)

// Config holds user preferences. Every field has a default, so a missing
// config file is not an error.
type Config struct {
	// Level is the default scan depth for validate, list and index rebuild.
	Level int `mapstructure:"level"`
	// StaleDays is the default threshold for index stale.
	StaleDays int `mapstructure:"stale_days"`
	// Color enables lipgloss styling on a terminal.
	Color bool `mapstructure:"color"`
	// Selector is picker (fuzzy TUI) or prompt (numbered list).
	Selector string `mapstructure:"selector"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:     2,
		StaleDays: 14,
		Color:     true,
		Selector:  SelectorPicker,
	}
}

// Load reads the global config (<data dir>/config.yaml), then the project
// config (<projectDir>/.tskctl.yaml), then TSKCTL_* environment variables.
// Later sources override earlier ones.
func Load(projectDir string) (*Config, error) {
	paths := []string{GlobalConfigPath()}
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ProjectConfigFile))
	}
	return LoadFiles(paths...)
}

// LoadFiles merges the given YAML files over the defaults and applies the
// environment. Files that do not exist are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("level", def.Level)
	v.SetDefault("stale_days", def.StaleDays)
	v.SetDefault("color", def.Color)
	v.SetDefault("selector", def.Selector)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetConfigType("yaml")

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	switch cfg.Selector {
	case SelectorPicker, SelectorPrompt:
	default:
		return nil, fmt.Errorf("invalid selector %q (allowed: %s, %s)", cfg.Selector, SelectorPicker, SelectorPrompt)
	}
	if cfg.StaleDays < 0 {
		return nil, fmt.Errorf("stale_days must be >= 0, got %d", cfg.StaleDays)
	}
	return cfg, nil
}

// DataDir returns the path to the tskctl data directory (~/.tskctl/)
// Creates the directory if it doesn't exist
// Can be overridden with TSKCTL_DATA_DIR environment variable (primarily for testing)
func DataDir() (string, error) {
	if dataDir := os.Getenv("TSKCTL_DATA_DIR"); dataDir != "" {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return "", err
		}
		return dataDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dataDir := filepath.Join(home, "."+AppName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// GlobalConfigPath returns the path to the global config file, or "" when
// there is no usable data directory.
func GlobalConfigPath() string {
	dataDir, err := DataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dataDir, ConfigFileName)
}

// DatabasePath returns the path to the SQLite index (~/.tskctl/index.db)
func DatabasePath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dataDir, DbName), nil
}

// LogDir returns the path to the log directory (~/.tskctl/logs/)
// Creates the directory if it doesn't exist
func LogDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}

	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", err
	}

	return logDir, nil
}
