// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ttttvvvv/ParkingCalculator/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Dataset contains tariff dataset configuration
	Dataset DatasetConfig `json:"dataset"`

	// Calculation contains calculation engine configuration
	Calculation CalculationConfig `json:"calculation"`

	// BAG contains address resolution configuration
	BAG BAGConfig `json:"bag"`

	// Cache contains address lookup cache configuration
	Cache CacheConfig `json:"cache"`

	// History contains calculation history configuration
	History HistoryConfig `json:"history"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// ReadTimeoutSeconds bounds request reads
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds response writes
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
}

// DatasetConfig contains tariff dataset settings
type DatasetConfig struct {
	// Path is the NPR dataset CSV file
	Path string `json:"path"`

	// Timezone is the IANA timezone the tariff clock runs in
	Timezone string `json:"timezone"`

	// LoadOnStart loads the dataset before serving
	LoadOnStart bool `json:"load_on_start"`
}

// CalculationConfig contains calculation engine settings
type CalculationConfig struct {
	// MaxSpanHours rejects intervals longer than this
	MaxSpanHours int `json:"max_span_hours"`

	// DefaultCurrency is the currency of all amounts
	DefaultCurrency string `json:"default_currency"`
}

// BAGConfig contains BAG address API settings
type BAGConfig struct {
	// BaseURL is the BAG individual queries endpoint
	BaseURL string `json:"base_url"`

	// APIKey authenticates requests; read from BAG_API_KEY when empty
	APIKey string `json:"api_key,omitempty"`

	// TimeoutSeconds bounds BAG API calls
	TimeoutSeconds int `json:"timeout_seconds"`
}

// CacheConfig contains address lookup cache settings
type CacheConfig struct {
	// Enabled enables caching of resolved addresses
	Enabled bool `json:"enabled"`

	// RedisAddr uses Redis when set; in-process cache otherwise
	RedisAddr string `json:"redis_addr,omitempty"`

	// TTLSeconds is how long resolved zones are cached
	TTLSeconds int `json:"ttl_seconds"`
}

// HistoryConfig contains calculation history settings
type HistoryConfig struct {
	// Enabled records completed calculations
	Enabled bool `json:"enabled"`

	// Backend selects the store (file, memory)
	Backend string `json:"backend"`

	// Path is the file backend root directory
	Path string `json:"path,omitempty"`
}

// MaxSpan returns the maximum calculation interval
func (c CalculationConfig) MaxSpan() time.Duration {
	return time.Duration(c.MaxSpanHours) * time.Hour
}

// TTL returns the cache entry lifetime
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 30,
		},
		Dataset: DatasetConfig{
			Path:        filepath.Join("data", "dataset.csv"),
			Timezone:    "Europe/Amsterdam",
			LoadOnStart: true,
		},
		Calculation: CalculationConfig{
			MaxSpanHours:    31 * 24,
			DefaultCurrency: "EUR",
		},
		BAG: BAGConfig{
			BaseURL:        "https://api.bag.kadaster.nl/lvbag/individuelebevragingen/v2",
			TimeoutSeconds: 30,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 300,
		},
		History: HistoryConfig{
			Enabled: false,
			Backend: "file",
			Path:    ".parkcalc-history",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if config.BAG.APIKey == "" {
		config.BAG.APIKey = os.Getenv("BAG_API_KEY")
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
