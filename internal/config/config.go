// Package config handles loading, validation, and merging of treqt configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the complete treqt configuration
type Config struct {
	// Path to the canonical requirements document
	RequirementsFile string `toml:"requirements_file" yaml:"requirements_file"`
	// Regular expressions that recognize requirement identifiers, in scan order
	RequirementPatterns []string `toml:"requirement_patterns" yaml:"requirement_patterns"`
	// Directory for cached run data
	CacheDir string         `toml:"cache_dir" yaml:"cache_dir"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Reports  ReportsConfig  `toml:"reports" yaml:"reports"`
	Run      RunConfig      `toml:"run" yaml:"run"`
}

// DatabaseConfig controls how the database label in the execution context is detected
type DatabaseConfig struct {
	// Environment variables checked, in order, for a database type
	DetectFromEnv []string `toml:"detect_from_env" yaml:"detect_from_env"`
	// Label used when no environment variable matches
	DefaultType string `toml:"default_type" yaml:"default_type"`
}

// ReportsConfig holds rendered-artifact settings
type ReportsConfig struct {
	// Directory the coverage matrix is written to
	OutputDir string `toml:"output_dir" yaml:"output_dir"`
	// Filename of the generated coverage matrix document
	CoverageFilename string `toml:"coverage_filename" yaml:"coverage_filename"`
}

// RunConfig describes how a test run fans out into workers
type RunConfig struct {
	// Command executed per worker unit. {package} and {junit} are substituted
	// with the unit and the fragment path the worker must write.
	TestCommand string `toml:"test_command" yaml:"test_command"`
	// Worker units, one test invocation each (package dirs or patterns)
	Packages []string `toml:"packages" yaml:"packages"`
	// Globs (doublestar) selecting test source files to scan for requirement tags
	TestGlobs []string `toml:"test_globs" yaml:"test_globs"`
	// Globs (doublestar) selecting JUnit fragment files to ingest
	ReportGlobs []string `toml:"report_globs" yaml:"report_globs"`
	// Max workers running concurrently
	Workers int `toml:"workers" yaml:"workers"`
}

// Defaults returns the default configuration
func Defaults() Config {
	return Config{
		RequirementsFile: "requirements.md",
		RequirementPatterns: []string{
			`FR-\d+\.?\d*`, // Functional Requirements
			`BR-\d+\.?\d*`, // Business Rules
		},
		CacheDir: ".treqt",
		Database: DatabaseConfig{
			DetectFromEnv: []string{"TEST_DATABASE", "DATABASE_URL", "DB_TYPE"},
			DefaultType:   "SQLite",
		},
		Reports: ReportsConfig{
			OutputDir:        ".",
			CoverageFilename: "TEST_COVERAGE.md",
		},
		Run: RunConfig{
			TestCommand: "gotestsum --junitfile {junit} -- {package}",
			Packages:    []string{"./..."},
			TestGlobs:   []string{"**/*_test.go"},
			ReportGlobs: []string{".treqt/reports/**/*.xml"},
			Workers:     4,
		},
	}
}

// Load loads configuration from a config file and merges it with defaults.
// If path is empty, treqt.toml then treqt.yaml are tried in the current
// directory; a missing file just yields the defaults.
func Load(path string) (*Config, error) {
	explicitPath := path != ""
	if path == "" {
		for _, candidate := range []string{"treqt.toml", "treqt.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	cfg := Defaults()
	if path == "" {
		return &cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicitPath {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return &cfg, nil
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		metadata, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
			var unknownFields []string
			for _, key := range undecoded {
				unknownFields = append(unknownFields, key.String())
			}
			return nil, fmt.Errorf("unknown fields in config: %s", strings.Join(unknownFields, ", "))
		}
	}

	mergeDefaults(&cfg)
	return &cfg, nil
}

// mergeDefaults fills any field a config file left empty
func mergeDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.RequirementsFile == "" {
		cfg.RequirementsFile = defaults.RequirementsFile
	}
	if len(cfg.RequirementPatterns) == 0 {
		cfg.RequirementPatterns = defaults.RequirementPatterns
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaults.CacheDir
	}
	if len(cfg.Database.DetectFromEnv) == 0 {
		cfg.Database.DetectFromEnv = defaults.Database.DetectFromEnv
	}
	if cfg.Database.DefaultType == "" {
		cfg.Database.DefaultType = defaults.Database.DefaultType
	}
	if cfg.Reports.OutputDir == "" {
		cfg.Reports.OutputDir = defaults.Reports.OutputDir
	}
	if cfg.Reports.CoverageFilename == "" {
		cfg.Reports.CoverageFilename = defaults.Reports.CoverageFilename
	}
	if cfg.Run.TestCommand == "" {
		cfg.Run.TestCommand = defaults.Run.TestCommand
	}
	if len(cfg.Run.Packages) == 0 {
		cfg.Run.Packages = defaults.Run.Packages
	}
	if len(cfg.Run.TestGlobs) == 0 {
		cfg.Run.TestGlobs = defaults.Run.TestGlobs
	}
	if len(cfg.Run.ReportGlobs) == 0 {
		cfg.Run.ReportGlobs = defaults.Run.ReportGlobs
	}
	if cfg.Run.Workers <= 0 {
		cfg.Run.Workers = defaults.Run.Workers
	}
}

// CoveragePath returns the path of the generated coverage matrix document
func (c *Config) CoveragePath() string {
	return filepath.Join(c.Reports.OutputDir, c.Reports.CoverageFilename)
}

// DatabaseType determines the database label from the configured environment variables
func (c *Config) DatabaseType() string {
	for _, envVar := range c.Database.DetectFromEnv {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		lower := strings.ToLower(value)
		switch {
		case strings.Contains(lower, "postgres"):
			return "PostgreSQL"
		case strings.Contains(lower, "mysql"):
			return "MySQL"
		case strings.Contains(lower, "sqlite"):
			return "SQLite"
		}
	}
	return c.Database.DefaultType
}
