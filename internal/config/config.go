package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Epic account/profile service settings
	Epic EpicConfig `toml:"epic"`

	// Cosmetic catalog settings
	Catalog CatalogConfig `toml:"catalog"`

	// Exclusivity/popularity table settings
	Tables TablesConfig `toml:"tables"`

	// Icon cache configuration
	Cache CacheConfig `toml:"cache"`

	// Output/render settings
	Output OutputConfig `toml:"output"`
}

// EpicConfig contains Epic Games API settings.
type EpicConfig struct {
	AccountServiceURL string `toml:"account_service_url"` // Override for the account service base URL
	ProfileServiceURL string `toml:"profile_service_url"` // Override for the profile service base URL
	RequestTimeout    string `toml:"request_timeout"`     // Per-request timeout (e.g., "15s")
}

// CatalogConfig contains fortnite-api.com settings.
type CatalogConfig struct {
	BaseURL string `toml:"base_url"` // Catalog base URL
	APIKey  string `toml:"api_key"`  // Optional API key
}

// TablesConfig contains exclusivity table settings.
type TablesConfig struct {
	Dir   string `toml:"dir"`   // Directory holding exclusive.txt / most_wanted.txt
	Watch bool   `toml:"watch"` // Reload tables on file change
}

// CacheConfig contains icon cache settings.
type CacheConfig struct {
	Dir     string `toml:"dir"`     // Directory to store cached icons
	Timeout string `toml:"timeout"` // Icon download timeout (e.g., "30s")
}

// OutputConfig contains render output settings.
type OutputConfig struct {
	Dir      string `toml:"dir"`      // Per-user output directory root
	Style    int    `toml:"style"`    // Default render style selector
	Gradient int    `toml:"gradient"` // Default gradient type
	Username string `toml:"username"` // Default username stamped on renders
	DBPath   string `toml:"db_path"`  // SQLite database path
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".exocheck")

	return &Config{
		Epic: EpicConfig{
			AccountServiceURL: "",
			ProfileServiceURL: "",
			RequestTimeout:    "15s",
		},
		Catalog: CatalogConfig{
			BaseURL: "https://fortnite-api.com",
			APIKey:  "",
		},
		Tables: TablesConfig{
			Dir:   filepath.Join(base, "tables"),
			Watch: false,
		},
		Cache: CacheConfig{
			Dir:     filepath.Join(base, "icon-cache"),
			Timeout: "30s",
		},
		Output: OutputConfig{
			Dir:      filepath.Join(base, "users"),
			Style:    0,
			Gradient: 0,
			Username: "",
			DBPath:   filepath.Join(base, "data.db"),
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".exocheck")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	return LoadFile(path)
}

// LoadFile loads the configuration from the given path.
// A missing file degrades to defaults rather than failing.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Epic.RequestTimeout); err != nil {
		return fmt.Errorf("invalid epic request timeout %q: %w", c.Epic.RequestTimeout, err)
	}

	if _, err := time.ParseDuration(c.Cache.Timeout); err != nil {
		return fmt.Errorf("invalid cache timeout %q: %w", c.Cache.Timeout, err)
	}

	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL cannot be empty")
	}

	if c.Output.Style < 0 {
		return fmt.Errorf("render style cannot be negative: %d", c.Output.Style)
	}

	return nil
}

// GetEpicRequestTimeout returns the Epic request timeout as a duration.
func (c *Config) GetEpicRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Epic.RequestTimeout)
}

// GetCacheTimeout returns the icon download timeout as a duration.
func (c *Config) GetCacheTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Cache.Timeout)
}
