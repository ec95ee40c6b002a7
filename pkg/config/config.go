// Package config provides configuration loading for the contractcompat CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/speakeasy-api/contractcompat/compat"
	"github.com/speakeasy-api/contractcompat/pkg/report"
	"gopkg.in/yaml.v3"
)

// Config represents the complete CLI configuration
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	Report     ReportConfig     `yaml:"report"`
	Log        LogConfig        `yaml:"log"`
}

// ValidationConfig bounds a validation run
type ValidationConfig struct {
	// MaxDepth is the maximum nesting below a contract (default: 64, 0 = unlimited)
	MaxDepth *int `yaml:"maxDepth,omitempty"`
	// MaxDeclarations is the per-contract declaration budget (default: 100000, 0 = unlimited)
	MaxDeclarations *int `yaml:"maxDeclarations,omitempty"`
	// Parallel validates contracts concurrently
	Parallel *bool `yaml:"parallel,omitempty"`
	// Parallelism caps concurrent contracts (0 = unbounded)
	Parallelism *int `yaml:"parallelism,omitempty"`
}

// ReportConfig configures report rendering
type ReportConfig struct {
	// Format is text, json or yaml (default: text)
	Format string `yaml:"format"`
	// Color is auto, always or never (default: auto)
	Color string `yaml:"color"`
	// Hints adds fix suggestions to each diagnostic (default: true)
	Hints *bool `yaml:"hints,omitempty"`
	// TimeFormat is a strftime layout for the report timestamp; empty omits it
	TimeFormat string `yaml:"timeFormat"`
}

// LogConfig configures diagnostic logging on stderr
type LogConfig struct {
	// Level is error, warn, info or debug (default: warn)
	Level string `yaml:"level"`
	// TimeFormat is a strftime layout for log lines
	TimeFormat string `yaml:"timeFormat"`
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }

// DefaultConfig returns a Config with the defaults of compat.DefaultOptions
func DefaultConfig() *Config {
	opts := compat.DefaultOptions()
	return &Config{
		Validation: ValidationConfig{
			MaxDepth:        intPtr(opts.MaxDepth),
			MaxDeclarations: intPtr(opts.MaxDeclarations),
			Parallel:        boolPtr(false),
			Parallelism:     intPtr(opts.Parallelism),
		},
		Report: ReportConfig{
			Format: string(report.FormatText),
			Color:  ColorAuto,
			Hints:  boolPtr(true),
		},
		Log: LogConfig{
			Level:      opts.LogLevel,
			TimeFormat: opts.TimeFormat,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if negative(c.Validation.MaxDepth) {
		return fmt.Errorf("validation.maxDepth must not be negative")
	}
	if negative(c.Validation.MaxDeclarations) {
		return fmt.Errorf("validation.maxDeclarations must not be negative")
	}
	if negative(c.Validation.Parallelism) {
		return fmt.Errorf("validation.parallelism must not be negative")
	}
	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		return fmt.Errorf("report.format: %w", err)
	}
	switch c.Report.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("report.color must be auto, always or never, got %q", c.Report.Color)
	}
	switch c.Log.Level {
	case "error", "warn", "info", "debug":
	default:
		return fmt.Errorf("log.level must be error, warn, info or debug, got %q", c.Log.Level)
	}
	return nil
}

// Options converts the validation and log sections into compat.Options
func (c *Config) Options() compat.Options {
	opts := compat.DefaultOptions()
	if c.Validation.MaxDepth != nil {
		opts.MaxDepth = *c.Validation.MaxDepth
	}
	if c.Validation.MaxDeclarations != nil {
		opts.MaxDeclarations = *c.Validation.MaxDeclarations
	}
	if c.Validation.Parallelism != nil {
		opts.Parallelism = *c.Validation.Parallelism
	}
	opts.LogLevel = c.Log.Level
	opts.TimeFormat = c.Log.TimeFormat
	return opts
}

func negative(n *int) bool {
	return n != nil && *n < 0
}

// ParallelEnabled reports whether contracts are validated concurrently
func (c *Config) ParallelEnabled() bool {
	return c.Validation.Parallel != nil && *c.Validation.Parallel
}

// HintsEnabled reports whether fix suggestions are rendered
func (c *Config) HintsEnabled() bool {
	return c.Report.Hints == nil || *c.Report.Hints
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for set
// pointers and non-empty strings)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Validation
	if other.Validation.MaxDepth != nil {
		c.Validation.MaxDepth = intPtr(*other.Validation.MaxDepth)
	}
	if other.Validation.MaxDeclarations != nil {
		c.Validation.MaxDeclarations = intPtr(*other.Validation.MaxDeclarations)
	}
	if other.Validation.Parallel != nil {
		c.Validation.Parallel = boolPtr(*other.Validation.Parallel)
	}
	if other.Validation.Parallelism != nil {
		c.Validation.Parallelism = intPtr(*other.Validation.Parallelism)
	}

	// Report
	if other.Report.Format != "" {
		c.Report.Format = other.Report.Format
	}
	if other.Report.Color != "" {
		c.Report.Color = other.Report.Color
	}
	if other.Report.Hints != nil {
		c.Report.Hints = boolPtr(*other.Report.Hints)
	}
	if other.Report.TimeFormat != "" {
		c.Report.TimeFormat = other.Report.TimeFormat
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.TimeFormat != "" {
		c.Log.TimeFormat = other.Log.TimeFormat
	}
}
