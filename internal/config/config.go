package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the persistent application configuration
type Config struct {
	// DataDir holds the database, logs, and event log.
	DataDir string `mapstructure:"data_dir" json:"data_dir"`

	Catalog CatalogConfig `mapstructure:"catalog" json:"catalog"`
	Search  SearchConfig  `mapstructure:"search" json:"search"`
	Storage StorageConfig `mapstructure:"storage" json:"storage"`
	UI      UIConfig      `mapstructure:"ui" json:"ui"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging"`
}

// CatalogConfig points at the show catalog
type CatalogConfig struct {
	BaseURL           string  `mapstructure:"base_url" json:"base_url"`
	UserAgent         string  `mapstructure:"user_agent" json:"user_agent"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second"` // <= 0 disables limiting
	Burst             int     `mapstructure:"burst" json:"burst"`
}

// SearchConfig controls the query gate
type SearchConfig struct {
	MinQueryLen int `mapstructure:"min_query" json:"min_query"`
	DebounceMs  int `mapstructure:"debounce_ms" json:"debounce_ms"` // 0 = search on every keystroke
}

// Debounce returns the debounce delay.
func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// StorageConfig holds durable storage settings
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" json:"db_path,omitempty"` // default: <data_dir>/popcorn.db
	Key    string `mapstructure:"key" json:"key"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	AltScreen bool `mapstructure:"alt_screen" json:"alt_screen"`
}

// LoggingConfig holds file log settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days"`
}

// DefaultDataDir returns $POPCORN_HOME, or ~/.popcorn.
func DefaultDataDir() string {
	if dir := os.Getenv("POPCORN_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".popcorn")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Catalog: CatalogConfig{
			BaseURL:           "https://api.tvmaze.com",
			UserAgent:         "popcorn/0.3 (https://github.com/abelbrown/popcorn)",
			RequestsPerSecond: 2, // TVMaze allows 20 calls per 10 seconds
			Burst:             4,
		},
		Search: SearchConfig{
			MinQueryLen: 3,
			DebounceMs:  0,
		},
		Storage: StorageConfig{
			Key: "watched",
		},
		UI: UIConfig{
			AltScreen: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.json")
}

// DBFile returns the database path.
func (c *Config) DBFile() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return filepath.Join(c.DataDir, "popcorn.db")
}

// LogDir returns the directory for the rotating log file.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// EventsFile returns the path of the JSONL event log.
func (c *Config) EventsFile() string {
	return filepath.Join(c.DataDir, "popcorn.events.jsonl")
}

// setDefaults mirrors DefaultConfig into v so every key is known to
// AutomaticEnv.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("data_dir", d.DataDir)

	v.SetDefault("catalog.base_url", d.Catalog.BaseURL)
	v.SetDefault("catalog.user_agent", d.Catalog.UserAgent)
	v.SetDefault("catalog.requests_per_second", d.Catalog.RequestsPerSecond)
	v.SetDefault("catalog.burst", d.Catalog.Burst)

	v.SetDefault("search.min_query", d.Search.MinQueryLen)
	v.SetDefault("search.debounce_ms", d.Search.DebounceMs)

	v.SetDefault("storage.db_path", d.Storage.DBPath)
	v.SetDefault("storage.key", d.Storage.Key)

	v.SetDefault("ui.alt_screen", d.UI.AltScreen)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
}

// Load reads configuration from path (ConfigPath when empty), then applies
// POPCORN_* environment overrides such as POPCORN_CATALOG_BASE_URL.
// Priority: environment variables > config file > defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("POPCORN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Search.MinQueryLen <= 0 {
		cfg.Search.MinQueryLen = DefaultConfig().Search.MinQueryLen
	}
	return cfg, nil
}

// Save writes config to path (ConfigPath when empty).
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
