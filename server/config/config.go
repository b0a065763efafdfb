package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
)

const (
	DefaultListenAddress  = "0.0.0.0:8545"
	DefaultLogLevel       = "info"
	DefaultNBPBaseURL     = "https://api.nbp.pl/api"
	DefaultNBPTimeout     = "10s"
	DefaultIngestInterval = "1h"
)

var (
	ErrInvalidListenAddress = errors.New("invalid listen address")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrInvalidBaseURL       = errors.New("invalid NBP base URL")
	ErrInvalidTable         = errors.New("invalid NBP table (must be A or B)")
	ErrInvalidDuration      = errors.New("invalid duration")
)

var listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)

// Config defines the base-level server configuration
type Config struct {
	// The associated CORS config, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The upstream NBP API settings
	NBP *NBP `toml:"nbp"`

	// The address at which the server will be served.
	// Format should be: <IP>:<PORT>
	ListenAddress string `toml:"listen_address"`

	// The request log level (debug, info, warn, error)
	LogLevel string `toml:"log_level"`
}

// CORS is the cross-origin policy of the API
type CORS struct {
	AllowedOrigins []string `toml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods"`
	AllowedHeaders []string `toml:"allowed_headers"`
}

// NBP configures the API client and the table ingestion
type NBP struct {
	BaseURL string `toml:"base_url"`

	// Tables lists the ingested tables (A, B)
	Tables []string `toml:"tables"`

	// Timeout is the per-request timeout, as a Go duration
	Timeout string `toml:"timeout"`

	// IngestInterval is how often the latest tables are fetched, as a Go duration
	IngestInterval string `toml:"ingest_interval"`
}

// TimeoutDuration returns the parsed request timeout
func (n *NBP) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(n.Timeout)

	return d
}

// IngestIntervalDuration returns the parsed ingest interval
func (n *NBP) IngestIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(n.IngestInterval)

	return d
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		LogLevel:      DefaultLogLevel,
		CORSConfig:    DefaultCORSConfig(),
		NBP:           DefaultNBPConfig(),
	}
}

// DefaultCORSConfig allows read-only access from any origin
func DefaultCORSConfig() *CORS {
	return &CORS{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}
}

// DefaultNBPConfig returns the default NBP upstream configuration
func DefaultNBPConfig() *NBP {
	return &NBP{
		BaseURL:        DefaultNBPBaseURL,
		Tables:         []string{"A"},
		Timeout:        DefaultNBPTimeout,
		IngestInterval: DefaultIngestInterval,
	}
}

// Level returns the parsed log level. Invalid levels fall back to info
func (c *Config) Level() slog.Level {
	var level slog.Level

	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// ValidateConfig validates the server configuration
func ValidateConfig(config *Config) error {
	if !listenAddressRegex.MatchString(config.ListenAddress) {
		return ErrInvalidListenAddress
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.LogLevel)
	}

	if config.NBP != nil {
		if err := validateNBP(config.NBP); err != nil {
			return err
		}
	}

	return nil
}

func validateNBP(cfg *NBP) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	if len(cfg.Tables) == 0 {
		return ErrInvalidTable
	}

	for _, table := range cfg.Tables {
		if t := strings.ToUpper(table); t != "A" && t != "B" {
			return fmt.Errorf("%w: %q", ErrInvalidTable, table)
		}
	}

	for _, raw := range []string{cfg.Timeout, cfg.IngestInterval} {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}
	}

	return nil
}

// Read reads the configuration from the given path.
// Omitted values are taken from the defaults
func Read(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills in the values the file left empty
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaults.ListenAddress
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	if cfg.NBP == nil {
		cfg.NBP = defaults.NBP

		return
	}

	if cfg.NBP.BaseURL == "" {
		cfg.NBP.BaseURL = defaults.NBP.BaseURL
	}

	if len(cfg.NBP.Tables) == 0 {
		cfg.NBP.Tables = defaults.NBP.Tables
	}

	if cfg.NBP.Timeout == "" {
		cfg.NBP.Timeout = defaults.NBP.Timeout
	}

	if cfg.NBP.IngestInterval == "" {
		cfg.NBP.IngestInterval = defaults.NBP.IngestInterval
	}
}
