// =============================================================================
// Kohesio Validator - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file. Every
// setting has a default, so the file is optional: when it does not exist the
// defaults are used as-is. Command-line flags override the loaded values.
//
// EXAMPLE (config.yaml):
//
//   quote: '"'
//   delimiter: ","
//   report_format: xml
//   output_dir: ./reports
//   input_archive_dir: ""        # leave empty to keep inputs in place
//   file_name_format: "{name}_{timestamp}_{uuid}"
//   log_level: info
//   max_concurrency: 4
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// Quote is the default quote character for input files.
	// Default: "\""
	Quote string `yaml:"quote"`

	// Delimiter is the default field separator for input files.
	// The names "tab", "pipe" and "semicolon" are accepted as well.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// InputExtensions are the file extensions picked up when a directory is
	// given on the command line.
	// Default: [".csv"]
	InputExtensions []string `yaml:"input_extensions"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// ReportFormat is one of xml, json, yaml, text or xlsx.
	// Default: "xml"
	ReportFormat string `yaml:"report_format"`

	// OutputDir is where report files are written.
	// Default: "./reports"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir, when set, receives input files whose validation
	// produced no errors.
	// Default: "" (disabled)
	InputArchiveDir string `yaml:"input_archive_dir"`

	// FileNameFormat is the report file name pattern, without extension.
	// Placeholders:
	//   {name}      - Input file name without extension
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - The report ID
	//   {result}    - SUCCESS, WARNING or FAILURE
	// Default: "{name}_{timestamp}_{uuid}"
	FileNameFormat string `yaml:"file_name_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of files validated at the same time.
	// Each file is still validated by a single run.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.Quote == "" {
		cfg.Quote = "\""
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
	if len(cfg.InputExtensions) == 0 {
		cfg.InputExtensions = []string{".csv"}
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = "xml"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./reports"
	}
	if cfg.FileNameFormat == "" {
		cfg.FileNameFormat = "{name}_{timestamp}_{uuid}"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Quote) != 1 {
		return fmt.Errorf("quote must be a single character, got %q", c.Quote)
	}
	delimiter := ResolveDelimiter(c.Delimiter)
	if utf8.RuneCountInString(delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if delimiter == c.Quote {
		return fmt.Errorf("delimiter and quote must differ, both are %q", c.Quote)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	return nil
}

// ResolveDelimiter maps delimiter names to the character they stand for.
func ResolveDelimiter(value string) string {
	switch value {
	case "\\t", "tab", "TAB":
		return "\t"
	case "pipe", "PIPE":
		return "|"
	case "semicolon", "SEMICOLON":
		return ";"
	case "comma", "COMMA":
		return ","
	}
	return value
}
