package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Search   SearchConfig   `toml:"search"`
	Delay    DelayConfig    `toml:"delay"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SearchConfig contains settings for the video platform search endpoint.
type SearchConfig struct {
	BaseURL           string  `toml:"base_url"`
	PlaylistBaseURL   string  `toml:"playlist_base_url"`
	AcceptLanguage    string  `toml:"accept_language"`
	UserAgent         string  `toml:"user_agent"`
	HeadersPath       string  `toml:"headers_path"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Timeout returns the per-request timeout, or zero for none.
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// DelayConfig holds the inter-track pause, in milliseconds.
type DelayConfig struct {
	MinMS    int `toml:"min_ms"`
	SpreadMS int `toml:"spread_ms"`
}

// Min returns the lower bound of the pause.
func (d DelayConfig) Min() time.Duration {
	return time.Duration(d.MinMS) * time.Millisecond
}

// Spread returns the width of the random window added to [DelayConfig.Min].
func (d DelayConfig) Spread() time.Duration {
	return time.Duration(d.SpreadMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigOrDefault loads the file at path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate reports settings that cannot produce a working setup.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Search.BaseURL == "" {
		return fmt.Errorf("%w: search.base_url is empty", ErrInvalidConfig)
	}
	if c.Search.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: search.requests_per_second must not be negative", ErrInvalidConfig)
	}
	if c.Delay.MinMS < 0 || c.Delay.SpreadMS < 0 {
		return fmt.Errorf("%w: delay values must not be negative", ErrInvalidConfig)
	}
	return nil
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
