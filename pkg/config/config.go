package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the card scraper
type Config struct {
	// Reddit client settings and credentials
	Reddit RedditConfig `yaml:"reddit" json:"reddit"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RedditConfig holds Reddit-specific configuration. Credentials left empty
// here are resolved from the named profile's credential store at startup.
type RedditConfig struct {
	Profile      string `yaml:"profile" json:"profile"`
	Mode         string `yaml:"mode" json:"mode"` // api, public or mock
	UserAgent    string `yaml:"user_agent" json:"user_agent"`
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password" json:"password"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestDelay is the minimum interval between any two outbound calls
	RequestDelay time.Duration `yaml:"request_delay" json:"request_delay"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	ChunkSize int           `yaml:"chunk_size" json:"chunk_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults. The delay
// and output tree follow the collector this tool feeds.
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			Profile:   "mtg_card_collector",
			Mode:      "public",
			UserAgent: "cardscraper/1.0 (custom card image collector)",
		},
		RateLimit: RateLimitConfig{
			RequestDelay: 5 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory: filepath.Join("data", "raw", "cards", "reddit_custom_magic"),
		},
		Download: DownloadConfig{
			Timeout:   30 * time.Second,
			ChunkSize: 8192,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromFile loads configuration from a YAML file, overlaying the
// receiver.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if profile := os.Getenv("CARDSCRAPER_PROFILE"); profile != "" {
		c.Reddit.Profile = profile
	}
	if mode := os.Getenv("CARDSCRAPER_MODE"); mode != "" {
		c.Reddit.Mode = mode
	}
	if ua := os.Getenv("CARDSCRAPER_USER_AGENT"); ua != "" {
		c.Reddit.UserAgent = ua
	}
	if id := os.Getenv("CARDSCRAPER_CLIENT_ID"); id != "" {
		c.Reddit.ClientID = id
	}
	if secret := os.Getenv("CARDSCRAPER_CLIENT_SECRET"); secret != "" {
		c.Reddit.ClientSecret = secret
	}
	if user := os.Getenv("CARDSCRAPER_USERNAME"); user != "" {
		c.Reddit.Username = user
	}
	if pass := os.Getenv("CARDSCRAPER_PASSWORD"); pass != "" {
		c.Reddit.Password = pass
	}

	if delay := os.Getenv("CARDSCRAPER_REQUEST_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid CARDSCRAPER_REQUEST_DELAY: %w", err)
		}
		c.RateLimit.RequestDelay = d
	}

	if dir := os.Getenv("CARDSCRAPER_OUTPUT_DIR"); dir != "" {
		c.Output.BaseDirectory = dir
	}

	if timeout := os.Getenv("CARDSCRAPER_DOWNLOAD_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid CARDSCRAPER_DOWNLOAD_TIMEOUT: %w", err)
		}
		c.Download.Timeout = d
	}

	if level := os.Getenv("CARDSCRAPER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("CARDSCRAPER_LOG_FILE"); file != "" {
		c.Logging.File = file
	}

	return nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.Reddit.Mode {
	case "api", "public", "mock":
	default:
		return fmt.Errorf("unknown reddit mode %q (use 'api', 'public' or 'mock')", c.Reddit.Mode)
	}

	if c.Reddit.Mode == "public" && c.Reddit.UserAgent == "" {
		return errors.New("a user agent is required for public mode")
	}

	if c.RateLimit.RequestDelay <= 0 {
		return errors.New("request_delay must be positive")
	}

	if c.Output.BaseDirectory == "" {
		return errors.New("output base_directory must not be empty")
	}

	if c.Download.Timeout <= 0 {
		return errors.New("download timeout must be positive")
	}
	if c.Download.ChunkSize <= 0 {
		return errors.New("download chunk_size must be positive")
	}

	return nil
}

// Load builds the effective configuration: defaults, then the optional YAML
// file, then environment overrides, validated at the end. An empty path
// falls back to ./cardscraper.yaml when that file exists.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		if _, err := os.Stat("cardscraper.yaml"); err == nil {
			path = "cardscraper.yaml"
		}
	}
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
