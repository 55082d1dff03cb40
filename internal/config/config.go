//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-sales.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-sales/internal/output"
)

// Config holds all configuration for pgedge-sales.
type Config struct {
	// Backend is the record store backend (postgres or sqlite).
	Backend string `mapstructure:"backend"`

	// Connection is the PostgreSQL connection string or the SQLite
	// database path.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is "pretty" for console output or "json".
	LogFormat string `mapstructure:"log_format"`

	// Format is the result output format (table, csv, json, yaml).
	Format string `mapstructure:"format"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Query holds the filter inputs of the parameterised queries.
	Query QueryConfig `mapstructure:"query"`

	// Report holds configuration for the report subcommand.
	Report ReportConfig `mapstructure:"report"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// InitConfig holds configuration for schema initialization.
type InitConfig struct {
	// DropExisting drops existing schema before initialization.
	DropExisting bool `mapstructure:"drop_existing"`
}

// LoadConfig holds configuration for loading sales files.
type LoadConfig struct {
	// BatchSize is the number of rows inserted per batch.
	BatchSize int `mapstructure:"batch_size"`

	// Delimiter is the single-character field separator.
	Delimiter string `mapstructure:"delimiter"`

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64 `mapstructure:"progress_interval"`

	// Clean removes incomplete records after loading.
	Clean bool `mapstructure:"clean"`
}

// QueryConfig holds the filter inputs of the parameterised queries.
type QueryConfig struct {
	Date        string  `mapstructure:"date"`
	Category    string  `mapstructure:"category"`
	MinQuantity int     `mapstructure:"min_quantity"`
	Month       string  `mapstructure:"month"`
	AgeCategory string  `mapstructure:"age_category"`
	Threshold   float64 `mapstructure:"threshold"`
	Ranks       int     `mapstructure:"ranks"`
	Limit       int     `mapstructure:"limit"`
}

// ReportConfig holds configuration for concurrent reports.
type ReportConfig struct {
	// Queries names the queries to run; empty runs the whole catalogue.
	Queries []string `mapstructure:"queries"`

	// Parallelism is the maximum number of queries run at once.
	Parallelism int `mapstructure:"parallelism"`
}

// GenerateConfig holds configuration for synthetic sales files.
type GenerateConfig struct {
	// Rows is the number of rows to generate.
	Rows int64 `mapstructure:"rows"`

	// NullProbability is the chance of each field being left blank.
	NullProbability float64 `mapstructure:"null_probability"`

	// Seed makes output reproducible; zero picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	// Profile is the sales traffic profile.
	Profile string `mapstructure:"profile"`

	// Start and End bound the sale dates (YYYY-MM-DD, inclusive).
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`

	// Customers is the number of distinct customers.
	Customers int `mapstructure:"customers"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Backend:    "sqlite",
		Connection: "pgedge-sales.db",
		LogLevel:   "info",
		LogFormat:  "pretty",
		Format:     output.FormatTable,
		Load: LoadConfig{
			BatchSize:        1000,
			Delimiter:        ",",
			ProgressInterval: 100000,
		},
		Query: QueryConfig{
			Date:        "2022-11-05",
			Category:    "Clothing",
			MinQuantity: 4,
			Month:       "2022-11",
			AgeCategory: "Beauty",
			Threshold:   1000,
			Ranks:       2,
			Limit:       5,
		},
		Report: ReportConfig{
			Parallelism: 4,
		},
		Generate: GenerateConfig{
			Rows:            2000,
			NullProbability: 0.001,
			Profile:         "store-regional",
			Start:           "2022-01-01",
			End:             "2023-12-31",
			Customers:       155,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-sales.yaml
// 3. ~/.config/pgedge-sales/pgedge-sales.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-sales")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-sales"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Backend == "" {
		return fmt.Errorf("backend is required")
	}
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.LogFormat != "pretty" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be 'pretty' or 'json'")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Load.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	if _, err := c.Load.DelimiterRune(); err != nil {
		return err
	}
	return nil
}

// DelimiterRune returns the delimiter as a single rune.
func (l LoadConfig) DelimiterRune() (rune, error) {
	r, size := utf8.DecodeRuneInString(l.Delimiter)
	if size == 0 || size != len(l.Delimiter) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", l.Delimiter)
	}
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("delimiter %q is not allowed", l.Delimiter)
	}
	return r, nil
}

// ValidateOutput checks the output format.
func (c *Config) ValidateOutput() error {
	return output.ValidateFormat(c.Format)
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Report.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1")
	}
	return c.ValidateOutput()
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if c.Generate.Rows < 0 {
		return fmt.Errorf("rows must not be negative")
	}
	if c.Generate.NullProbability < 0 || c.Generate.NullProbability > 1 {
		return fmt.Errorf("null_probability must be between 0 and 1")
	}
	if c.Generate.Customers < 1 {
		return fmt.Errorf("customers must be at least 1")
	}
	start, end, err := c.Generate.DateRange()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end date must not be before start date")
	}
	return nil
}

// DateRange parses the generation start and end dates.
func (g GenerateConfig) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, g.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", g.Start, err)
	}
	end, err := time.Parse(time.DateOnly, g.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", g.End, err)
	}
	return start, end, nil
}
