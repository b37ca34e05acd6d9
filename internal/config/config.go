package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultFetchTimeout = "10s"
	DefaultMaxBodyBytes = 10 << 20
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Settings Settings       `yaml:"settings"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type FetchConfig struct {
	Timeout      string `yaml:"timeout"`
	UserAgent    string `yaml:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Settings are the user-facing preferences of the reader.
type Settings struct {
	FeedRefreshDebounceMinutes int    `yaml:"feed_refresh_debounce_minutes"`
	RefreshAllDebounceMinutes  int    `yaml:"refresh_all_debounce_minutes"`
	AutoUpdateIntervalMinutes  int    `yaml:"auto_update_interval_minutes"`
	LastVacuum                 int64  `yaml:"last_vacuum"`
	DefaultViewType            string `yaml:"default_view_type"`
	DefaultViewID              int64  `yaml:"default_view_id"`
	AutoCollapseFolders        bool   `yaml:"auto_collapse_folders"`
}

// GetTimeout parses the fetch timeout string
func (f *FetchConfig) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(f.Timeout)
}

// Default returns a configuration rooted in the default data directory.
func Default() *Config {
	dir := DefaultDataDir()
	cfg := &Config{
		Database: DatabaseConfig{Path: filepath.Join(dir, "feedmee.sqlite")},
		Log:      LogConfig{Level: "info", File: filepath.Join(dir, "feedmee.log")},
		Settings: Settings{
			FeedRefreshDebounceMinutes: 4,
			AutoUpdateIntervalMinutes:  30,
			DefaultViewType:            "latest",
			DefaultViewID:              -1,
			AutoCollapseFolders:        true,
		},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Database.Path != "" {
		cfg.Database.Path = expandPath(cfg.Database.Path)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	applyDefaults(cfg)

	if _, err := cfg.Fetch.GetTimeout(); err != nil {
		return nil, fmt.Errorf("parsing fetch timeout: %w", err)
	}

	return cfg, nil
}

// LoadOrCreate loads the config at path. A missing or unreadable file is
// replaced with defaults.
func LoadOrCreate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}

	cfg = Default()
	if err := Save(cfg, path); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}
	return cfg, nil
}

// Save writes configuration to file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Fetch.Timeout == "" {
		cfg.Fetch.Timeout = DefaultFetchTimeout
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = DefaultUserAgent
	}
	if cfg.Fetch.MaxBodyBytes <= 0 {
		cfg.Fetch.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Settings.DefaultViewType == "" {
		cfg.Settings.DefaultViewType = "latest"
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// DefaultDataDir returns the directory holding the database and log file
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "feedmee")
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "feedmee", "config.yaml")
}
