// =============================================================================
// Transfer Pricing - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file.
//
// CONFIGURATION FILE (config.yaml):
//   export_dir:          ./exports
//   export_file_format:  transfer_pricing_{date}.csv
//   log_level:           info
//   log_format:          console
//   placeholders:
//     department:        เลือกหน่วยงาน
//     service:           เลือกบริการ
//   suggestions:
//     providers:         [...]
//     services:          [...]
//     receivers:         [...]
//
// A missing file at the default path is not an error: defaults are used.
// Every unset option is filled by applyDefaults.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ginjaninja78/transfer-pricing/internal/schema"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// ExportDir is where CSV and workbook exports are written.
	// Default: "./exports"
	ExportDir string `yaml:"export_dir"`

	// ExportFileFormat is the export file name pattern.
	// Placeholders:
	//   {date}      - Export date (YYYY-MM-DD)
	//   {timestamp} - Export time (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "transfer_pricing_{date}.csv"
	ExportFileFormat string `yaml:"export_file_format"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects human-readable ("console") or "json" log lines.
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// Placeholders are the "please select" values of the entry form.
	Placeholders Placeholders `yaml:"placeholders"`

	// Suggestions are the default choices offered by the entry form.
	// They are not enforced: any non-placeholder value is accepted.
	Suggestions Suggestions `yaml:"suggestions"`
}

// Placeholders holds the unselected values of the form's selection fields.
type Placeholders struct {
	Department string `yaml:"department"`
	Service    string `yaml:"service"`
}

// Suggestions holds the default selection lists.
type Suggestions struct {
	Providers []string `yaml:"providers"`
	Services  []string `yaml:"services"`
	Receivers []string `yaml:"receivers"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every option set to its default.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path.
//
// RETURNS:
//   - The configuration with defaults applied.
//   - An error if the file exists but cannot be read, parsed or validated,
//     or if an explicitly named file (other than DefaultPath) is missing.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.ExportDir == "" {
		cfg.ExportDir = "./exports"
	}
	if cfg.ExportFileFormat == "" {
		cfg.ExportFileFormat = "transfer_pricing_{date}.csv"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.Placeholders.Department == "" {
		cfg.Placeholders.Department = schema.DefaultDepartmentPlaceholder
	}
	if cfg.Placeholders.Service == "" {
		cfg.Placeholders.Service = schema.DefaultServicePlaceholder
	}
	if cfg.Suggestions.Providers == nil {
		cfg.Suggestions.Providers = []string{"IT แผนก", "HR แผนก", "การเงิน แผนก", "การตลาด แผนก"}
	}
	if cfg.Suggestions.Services == nil {
		cfg.Suggestions.Services = []string{
			"บริการ IT Support",
			"บริการจัดการทรัพยากรบุคคล",
			"บริการทางการเงิน",
			"บริการการตลาด",
			"บริการปรึกษา",
		}
	}
	if cfg.Suggestions.Receivers == nil {
		cfg.Suggestions.Receivers = []string{"สำนักงานใหญ่", "สาขา A", "สาขา B", "สาขา C", "โรงงาน 1", "โรงงาน 2"}
	}
}

// validate checks option values. Directories are not created here; the
// export path is prepared when an export is written.
func validate(cfg *Config) error {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got '%s')", cfg.LogLevel)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json (got '%s')", cfg.LogFormat)
	}

	if !strings.Contains(cfg.ExportFileFormat, "{date}") &&
		!strings.Contains(cfg.ExportFileFormat, "{timestamp}") &&
		!strings.Contains(cfg.ExportFileFormat, "{uuid}") {
		return fmt.Errorf("export_file_format needs a {date}, {timestamp} or {uuid} placeholder")
	}
	return nil
}
