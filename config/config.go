package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the full application configuration: the JSON config document,
// environment overrides, and bound CLI flags.
type Config struct {
	// Scrape targets, from the JSON config document.
	BaseURL string `mapstructure:"base-url"`
	PageURL string `mapstructure:"page-url"`
	City    string `mapstructure:"city"`

	// Paths.
	Database  string `mapstructure:"database"`
	ExportDir string `mapstructure:"export-dir"`
	CacheFile string `mapstructure:"cache-file"`
	LogFile   string `mapstructure:"log-file"`
	Verbose   bool   `mapstructure:"verbose"`

	// Page fetch transport.
	FetchRate    float64 `mapstructure:"fetch-rate"`
	FetchRetries int     `mapstructure:"fetch-retries"`
	UserAgent    string  `mapstructure:"user-agent"`

	// Geocoding.
	GeocodeCalls          int `mapstructure:"geocode-calls"`
	GeocodeWindowSeconds  int `mapstructure:"geocode-window-seconds"`
	GeocodeTimeoutSeconds int `mapstructure:"geocode-timeout-seconds"`
}

// GeocodeWindow returns the rate-limit window as a duration.
func (c *Config) GeocodeWindow() time.Duration {
	return time.Duration(c.GeocodeWindowSeconds) * time.Second
}

// GeocodeTimeout returns the per-lookup timeout as a duration.
func (c *Config) GeocodeTimeout() time.Duration {
	return time.Duration(c.GeocodeTimeoutSeconds) * time.Second
}

// Load reads the JSON config document and returns the populated Config.
// Environment variables (prefix MIETMAP_) and previously bound CLI flags
// override file values. A .env file is honoured if present.
func Load(cfgFile string) (*Config, error) {
	// No .env file is fine; system env still applies.
	_ = godotenv.Load()

	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("json")

	viper.SetDefault("database", "listings.sqlite")
	viper.SetDefault("export-dir", "export")
	viper.SetDefault("cache-file", "address_location_cache.gob")
	viper.SetDefault("log-file", "scrape.log")
	viper.SetDefault("fetch-rate", 2.0)
	viper.SetDefault("fetch-retries", 3)
	viper.SetDefault("user-agent", "mietmap/1.0 (+https://github.com/Botopiaorg/mietmap)")
	viper.SetDefault("geocode-calls", 1)
	viper.SetDefault("geocode-window-seconds", 1)
	viper.SetDefault("geocode-timeout-seconds", 5)

	viper.SetEnvPrefix("MIETMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", cfgFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if cfg.BaseURL == "" || cfg.PageURL == "" || cfg.City == "" {
		return nil, fmt.Errorf("config: base-url, page-url, and city are required in %q", cfgFile)
	}

	return &cfg, nil
}
