package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Translation modes select which lyric text ends up in the written file.
const (
	TranslationAppend = "append"
	TranslationNone   = "none"
	TranslationPrefer = "prefer"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Fetch       FetchConfig       `toml:"fetch"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Credentials CredentialsConfig `toml:"credentials"`
	History     HistoryConfig     `toml:"history"`
	Log         LogConfig         `toml:"log"`
}

// FetchConfig contains the batch pipeline settings.
type FetchConfig struct {
	OutDir      string  `toml:"outdir"`
	Sleep       float64 `toml:"sleep"`   // seconds between network calls
	Retries     int     `toml:"retries"` // additional lyric attempts
	Backoff     float64 `toml:"backoff"` // seconds, multiplied by the attempt number
	SearchLimit int     `toml:"search_limit"`
	Fuzzy       bool    `toml:"fuzzy"`
	Threshold   float64 `toml:"threshold"`
	Translation string  `toml:"translation"`
}

// CatalogConfig contains the remote catalog endpoint settings.
type CatalogConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   int    `toml:"timeout"` // seconds
	UserAgent string `toml:"user_agent"`
}

// CredentialsConfig holds the opaque cookie sent with every catalog request.
type CredentialsConfig struct {
	Cookie string `toml:"cookie"`
}

// HistoryConfig contains run history database settings.
type HistoryConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// SleepDuration returns the pacing interval as a [time.Duration].
func (f FetchConfig) SleepDuration() time.Duration {
	return seconds(f.Sleep)
}

// BackoffDuration returns the base retry backoff as a [time.Duration].
func (f FetchConfig) BackoffDuration() time.Duration {
	return seconds(f.Backoff)
}

// TimeoutDuration returns the per-request HTTP timeout.
func (c CatalogConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Validate checks value ranges that would otherwise surface mid-batch.
func (c *Config) Validate() error {
	switch {
	case c.Fetch.OutDir == "":
		return fmt.Errorf("%w: fetch.outdir must not be empty", ErrInvalidConfig)
	case c.Fetch.Sleep < 0:
		return fmt.Errorf("%w: fetch.sleep must be >= 0, got %v", ErrInvalidConfig, c.Fetch.Sleep)
	case c.Fetch.Retries < 0:
		return fmt.Errorf("%w: fetch.retries must be >= 0, got %d", ErrInvalidConfig, c.Fetch.Retries)
	case c.Fetch.Backoff < 0:
		return fmt.Errorf("%w: fetch.backoff must be >= 0, got %v", ErrInvalidConfig, c.Fetch.Backoff)
	case c.Fetch.SearchLimit <= 0:
		return fmt.Errorf("%w: fetch.search_limit must be > 0, got %d", ErrInvalidConfig, c.Fetch.SearchLimit)
	case c.Catalog.BaseURL == "":
		return fmt.Errorf("%w: catalog.base_url must not be empty", ErrInvalidConfig)
	case c.Catalog.Timeout <= 0:
		return fmt.Errorf("%w: catalog.timeout must be > 0, got %d", ErrInvalidConfig, c.Catalog.Timeout)
	}

	switch c.Fetch.Translation {
	case TranslationAppend, TranslationNone, TranslationPrefer:
	default:
		return fmt.Errorf("%w: fetch.translation must be one of append, none, prefer; got %q", ErrInvalidConfig, c.Fetch.Translation)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
