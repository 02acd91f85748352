// Package config holds the conversion settings: which taxonomy version and
// languages to convert, where the distribution lives and where tables go.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
)

// Store drivers.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Localization sources.
const (
	LocalizationDist = "dist"
	LocalizationYAML = "yaml"
)

// Config represents the taxoload configuration file.
type Config struct {
	Version        string       `yaml:"version"`
	SourceLanguage string       `yaml:"source_language"`
	Languages      []string     `yaml:"languages"`
	InputDir       string       `yaml:"input_dir"`
	OutputDir      string       `yaml:"output_dir"`
	Store          Store        `yaml:"store"`
	Localization   Localization `yaml:"localization"`
	StripMarkup    bool         `yaml:"strip_markup"`
	CacheSize      int          `yaml:"cache_size"`
	LogLevel       string       `yaml:"log_level"`
	Verify         bool         `yaml:"verify"`
}

// Store selects the table backend.
type Store struct {
	Driver string `yaml:"driver"`
	// Path is the SQLite database file. Empty means <output>/taxoload.db.
	Path string `yaml:"path"`
}

// Localization selects where translations come from.
type Localization struct {
	Source string `yaml:"source"`
	// YAMLDir holds <section>/<lang>.yml dictionaries for the yaml source.
	YAMLDir string `yaml:"yaml_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version:        "2025-06-unstable",
		SourceLanguage: "en",
		Languages:      []string{"fi", "sv"},
		InputDir:       filepath.Join("data", "input"),
		OutputDir:      filepath.Join("data", "output"),
		Store:          Store{Driver: DriverCSV},
		Localization:   Localization{Source: LocalizationDist},
		CacheSize:      16,
		LogLevel:       "info",
		Verify:         true,
	}
}

// Load reads a YAML config file over the defaults. A missing file is an
// error; use Default when no file is configured.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: config file %s not found", internalerr.ErrInvalidConfig, path)
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %w", internalerr.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Version) == "" {
		problems = append(problems, "version is empty")
	}
	if c.SourceLanguage == "" {
		problems = append(problems, "source_language is empty")
	}
	seen := make(map[string]bool)
	for _, l := range c.Languages {
		if l == "" {
			problems = append(problems, "languages contains an empty code")
			continue
		}
		if seen[l] {
			problems = append(problems, fmt.Sprintf("language %q listed twice", l))
		}
		seen[l] = true
	}
	if c.InputDir == "" {
		problems = append(problems, "input_dir is empty")
	}
	switch c.Store.Driver {
	case DriverCSV, DriverMemory:
		if c.OutputDir == "" {
			problems = append(problems, "output_dir is empty")
		}
	case DriverSQLite:
		if c.OutputDir == "" && c.Store.Path == "" {
			problems = append(problems, "sqlite store needs output_dir or store.path")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Localization.Source {
	case LocalizationDist:
	case LocalizationYAML:
		if c.Localization.YAMLDir == "" {
			problems = append(problems, "yaml localization needs localization.yaml_dir")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown localization source %q", c.Localization.Source))
	}
	if c.CacheSize < 0 {
		problems = append(problems, "cache_size is negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DistDir is the distribution root: <input>/<version>/dist.
func (c Config) DistDir() string {
	return filepath.Join(c.InputDir, c.Version, "dist")
}

// OutputRoot is where tables for this version are written.
func (c Config) OutputRoot() string {
	return filepath.Join(c.OutputDir, c.Version)
}

// StorePath is the SQLite database file.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(c.OutputRoot(), "taxoload.db")
}
