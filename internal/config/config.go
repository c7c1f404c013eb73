// Package config loads the procdash configuration from YAML.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/procdash/pkg/bagel"
)

// Config is the procdash configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
	PageSize        int    `yaml:"page_size"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// IngestConfig configures the CSV ingest pipeline.
type IngestConfig struct {
	Concurrency int `yaml:"concurrency"`
	// GraphFile, when set, receives a DOT drawing of the ingest pipeline with its step timings.
	GraphFile string `yaml:"graph_file"`
}

// StoreConfig configures the in-memory dataset store.
type StoreConfig struct {
	// MaxDatasets evicts the oldest dataset once exceeded. 0 means no limit.
	MaxDatasets int `yaml:"max_datasets"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`
}

// WatchConfig configures the reload of a bagel from disk.
type WatchConfig struct {
	File   string `yaml:"file"`
	Schema string `yaml:"schema"`
	Name   string `yaml:"name"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8050",
			MaxUploadBytes:  32 << 20,
			PageSize:        bagel.DefaultPageSize,
			ReadTimeout:     "30s",
			WriteTimeout:    "60s",
			ShutdownTimeout: "10s",
		},
		Ingest: IngestConfig{
			Concurrency: 4,
		},
		Store: StoreConfig{
			MaxDatasets: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Watch: WatchConfig{
			Schema: bagel.SchemaImaging,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults. Environment variables override
// the file in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrap(err, "failed to read config")
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrap(err, "failed to parse config")
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("PROCDASH_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("PROCDASH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("PROCDASH_WATCH_FILE"); file != "" {
		c.Watch.File = file
	}
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}

	return d
}

// GetReadTimeout returns the server read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout returns the server write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 60*time.Second)
}

// GetShutdownTimeout returns how long the server waits for requests in flight when stopping.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the accepted logging formats.
var ValidLogFormats = []string{"json", "console"}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}

	return false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address not configured (set server.addr or PROCDASH_ADDR)")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.Errorf("invalid max upload size: %d", c.Server.MaxUploadBytes)
	}
	if c.Server.PageSize <= 0 {
		return errors.Errorf("invalid page size: %d", c.Server.PageSize)
	}
	if c.Ingest.Concurrency <= 0 {
		return errors.Errorf("invalid ingest concurrency: %d", c.Ingest.Concurrency)
	}
	if c.Store.MaxDatasets < 0 {
		return errors.Errorf("invalid max datasets: %d", c.Store.MaxDatasets)
	}
	if !contains(ValidLogLevels, strings.ToLower(c.Logging.Level)) {
		return errors.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !contains(ValidLogFormats, strings.ToLower(c.Logging.Format)) {
		return errors.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	if c.Watch.File != "" {
		if _, err := bagel.SchemaByName(c.Watch.Schema); err != nil {
			return errors.Wrap(err, "invalid watch schema")
		}
	}

	return nil
}
