package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SQLite driver names accepted for the source and destination.
const (
	DriverPureGo = "sqlite"  // modernc.org/sqlite
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
)

// DefaultTable is the table read from the source and written to the destination.
const DefaultTable = "Fires"

// Config holds all firereduce configuration.
type Config struct {
	Source      DatabaseConfig `yaml:"source"`
	Destination DatabaseConfig `yaml:"destination"`

	// Date parsing
	Dates DatesConfig `yaml:"dates"`

	// Diagnostics printed to stdout
	Report ReportConfig `yaml:"report"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DatabaseConfig configures one side of the transfer.
type DatabaseConfig struct {
	Table  string `yaml:"table"`
	Driver string `yaml:"driver"` // sqlite, sqlite3
}

// DatesConfig configures the lenient date parser.
type DatesConfig struct {
	// Extra time layouts, tried before the built-in ones.
	Layouts []string `yaml:"layouts"`
}

// ReportConfig configures the diagnostics report.
type ReportConfig struct {
	Enabled bool `yaml:"enabled"`
	TopN    int  `yaml:"top_n"` // 0 = list every value
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Table:  DefaultTable,
			Driver: DriverPureGo,
		},
		Destination: DatabaseConfig{
			Table:  DefaultTable,
			Driver: DriverPureGo,
		},
		Report: ReportConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if driver := os.Getenv("FIREREDUCE_DRIVER"); driver != "" {
		c.Source.Driver = driver
		c.Destination.Driver = driver
	}
	if level := os.Getenv("FIREREDUCE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("FIREREDUCE_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// Validate checks the configuration for values the run cannot proceed with.
func (c *Config) Validate() error {
	sides := []struct {
		name string
		db   DatabaseConfig
	}{
		{"source", c.Source},
		{"destination", c.Destination},
	}
	for _, side := range sides {
		if strings.TrimSpace(side.db.Table) == "" {
			return fmt.Errorf("%s.table must not be empty", side.name)
		}
		switch side.db.Driver {
		case DriverPureGo, DriverCGO:
		default:
			return fmt.Errorf("%s.driver %q is not supported (want %q or %q)", side.name, side.db.Driver, DriverPureGo, DriverCGO)
		}
	}
	if c.Report.TopN < 0 {
		return fmt.Errorf("report.top_n must be >= 0, got %d", c.Report.TopN)
	}
	return c.Logging.Validate()
}
