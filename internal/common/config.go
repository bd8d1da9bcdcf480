package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for minilake
type Config struct {
	Storage      StorageConfig      `toml:"storage"`
	Clients      ClientsConfig      `toml:"clients"`
	Fundamentals FundamentalsConfig `toml:"fundamentals"`
	Logging      LoggingConfig      `toml:"logging"`
}

// StorageConfig holds the lake root path.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Prices PricesConfig `toml:"prices"`
	Edgar  EdgarConfig  `toml:"edgar"`
}

// PricesConfig holds the price provider configuration.
type PricesConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *PricesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EdgarConfig holds the regulatory-filings provider configuration.
// Contact is the identification string carried on every outbound request;
// the provider requires it. Pacing is the mandatory delay between calls.
type EdgarConfig struct {
	BaseURL      string `toml:"base_url"`
	DirectoryURL string `toml:"directory_url"`
	Contact      string `toml:"contact"`
	Pacing       string `toml:"pacing"`
	Timeout      string `toml:"timeout"`
}

// GetPacing parses and returns the pacing interval
func (c *EdgarConfig) GetPacing() time.Duration {
	d, err := time.ParseDuration(c.Pacing)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

// GetTimeout parses and returns the timeout duration
func (c *EdgarConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// FundamentalsConfig holds the fundamentals cache policy.
type FundamentalsConfig struct {
	TTL string `toml:"ttl"`
}

// GetTTL parses and returns the fundamentals freshness TTL
func (c *FundamentalsConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return FreshnessFundamentals
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a config with sensible defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{Path: "data"},
		Clients: ClientsConfig{
			Prices: PricesConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Edgar: EdgarConfig{
				BaseURL:      "https://data.sec.gov/api/xbrl/companyfacts",
				DirectoryURL: "https://www.sec.gov/files/company_tickers.json",
				Contact:      "MiniDataLake/1.0 (chevalinn1@gmail.com)",
				Pacing:       "100ms",
				Timeout:      "30s",
			},
		},
		Fundamentals: FundamentalsConfig{TTL: "24h"},
		Logging:      LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from a TOML file (when path is non-empty
// and exists) and applies environment overrides on top of defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if path := os.Getenv("MINILAKE_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if level := os.Getenv("MINILAKE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if url := os.Getenv("MINILAKE_PRICES_BASE_URL"); url != "" {
		config.Clients.Prices.BaseURL = url
	}

	if rl := os.Getenv("MINILAKE_PRICES_RATE_LIMIT"); rl != "" {
		if n, err := strconv.Atoi(rl); err == nil {
			config.Clients.Prices.RateLimit = n
		}
	}

	if url := os.Getenv("MINILAKE_EDGAR_BASE_URL"); url != "" {
		config.Clients.Edgar.BaseURL = url
	}

	if url := os.Getenv("MINILAKE_EDGAR_DIRECTORY_URL"); url != "" {
		config.Clients.Edgar.DirectoryURL = url
	}

	if contact := os.Getenv("MINILAKE_CONTACT"); contact != "" {
		config.Clients.Edgar.Contact = contact
	}

	if ttl := os.Getenv("MINILAKE_FUNDAMENTALS_TTL"); ttl != "" {
		config.Fundamentals.TTL = ttl
	}
}
