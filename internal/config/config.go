// Package config loads analysis settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/internal/logging"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/batch"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/parser"
)

// EnvPrefix prefixes every environment variable, e.g. NANION_BATCH_PARALLEL.
const EnvPrefix = "NANION"

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Batch    BatchConfig    `yaml:"batch" envconfig:"BATCH"`
	Logging  logging.Config `yaml:"logging" envconfig:"LOGGING"`
}

// AnalysisConfig contains per-file detection and extraction constants
type AnalysisConfig struct {
	SheetName          string  `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	HeaderScanRows     int     `yaml:"header_scan_rows" envconfig:"HEADER_SCAN_ROWS" validate:"gte=1"`
	DataPointsPerGroup int     `yaml:"data_points_per_group" envconfig:"DATA_POINTS_PER_GROUP" validate:"gte=1"`
	SweepCountCell     string  `yaml:"sweep_count_cell" envconfig:"SWEEP_COUNT_CELL" validate:"required,alphanum"`
	ResultsMarker      string  `yaml:"results_marker" envconfig:"RESULTS_MARKER" validate:"required"`
	ParameterMarker    string  `yaml:"parameter_marker" envconfig:"PARAMETER_MARKER" validate:"required"`
	MismatchWarnRatio  float64 `yaml:"mismatch_warn_ratio" envconfig:"MISMATCH_WARN_RATIO" validate:"gte=0,lte=1"`
	MinRows            int     `yaml:"min_rows" envconfig:"MIN_ROWS" validate:"gte=1"`
	MinCols            int     `yaml:"min_cols" envconfig:"MIN_COLS" validate:"gte=1"`
	// ColumnMaps overrides the built-in layouts, keyed by protocol name.
	ColumnMaps map[models.ProtocolType]models.ColumnMap `yaml:"column_maps,omitempty" ignored:"true"`
}

// BatchConfig contains batch scheduling configuration
type BatchConfig struct {
	Parallel      bool          `yaml:"parallel" envconfig:"PARALLEL"`
	MaxWorkers    int           `yaml:"max_workers" envconfig:"MAX_WORKERS" validate:"gte=0"`
	SizeWarnBytes int64         `yaml:"size_warn_bytes" envconfig:"SIZE_WARN_BYTES" validate:"gte=0"`
	MaxFileBytes  int64         `yaml:"max_file_bytes" envconfig:"MAX_FILE_BYTES" validate:"gte=0"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gte=0"`
	ExportTables  bool          `yaml:"export_tables" envconfig:"EXPORT_TABLES"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := nanion.DefaultOptions()
	return &Config{
		Analysis: AnalysisConfig{
			HeaderScanRows:     opts.HeaderScanRows,
			DataPointsPerGroup: opts.DataPointsPerGroup,
			SweepCountCell:     opts.SweepCountCell,
			ResultsMarker:      opts.ResultsMarker,
			ParameterMarker:    opts.ParameterMarker,
			MismatchWarnRatio:  opts.MismatchWarnRatio,
			MinRows:            opts.MinRows,
			MinCols:            opts.MinCols,
		},
		Batch: BatchConfig{
			Parallel:      true,
			SizeWarnBytes: 50 << 20,
			Timeout:       30 * time.Minute,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load layers configuration: built-in defaults, then the YAML file at path
// (skipped when path is empty or the file does not exist), then NANION_*
// environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile overlays the keys present in a YAML file.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, c)
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks field constraints and the column map overrides.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	for t, m := range c.Analysis.ColumnMaps {
		if err := parser.ValidateColumnMap(t, m); err != nil {
			return err
		}
	}
	return nil
}

// Options returns the single-file extraction options.
func (c *Config) Options() nanion.Options {
	a := c.Analysis
	return nanion.Options{
		SheetName:          a.SheetName,
		HeaderScanRows:     a.HeaderScanRows,
		DataPointsPerGroup: a.DataPointsPerGroup,
		SweepCountCell:     a.SweepCountCell,
		ColumnMaps:         a.ColumnMaps,
		ResultsMarker:      a.ResultsMarker,
		ParameterMarker:    a.ParameterMarker,
		MismatchWarnRatio:  a.MismatchWarnRatio,
		MinRows:            a.MinRows,
		MinCols:            a.MinCols,
		SizeWarnBytes:      c.Batch.SizeWarnBytes,
		MaxFileBytes:       c.Batch.MaxFileBytes,
	}
}

// BatchOptions returns the scheduler options.
func (c *Config) BatchOptions() batch.Options {
	return batch.Options{
		Parallel:     c.Batch.Parallel,
		MaxWorkers:   c.Batch.MaxWorkers,
		Timeout:      c.Batch.Timeout,
		ExportTables: c.Batch.ExportTables,
	}
}
