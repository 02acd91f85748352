package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.Version != "2025-06-unstable" {
		t.Errorf("Unexpected default version %q", cfg.Version)
	}
	if !reflect.DeepEqual(cfg.Languages, []string{"fi", "sv"}) {
		t.Errorf("Unexpected default languages %v", cfg.Languages)
	}
	if got, want := cfg.DistDir(), filepath.Join("data", "input", "2025-06-unstable", "dist"); got != want {
		t.Errorf("DistDir = %q, want %q", got, want)
	}
	if got, want := cfg.StorePath(), filepath.Join("data", "output", "2025-06-unstable", "taxoload.db"); got != want {
		t.Errorf("StorePath = %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "taxoload.yaml")

	content := `version: 2024-07
languages:
  - de
  - fr
  - it
store:
  driver: sqlite
  path: /tmp/tax.db
localization:
  source: yaml
  yaml_dir: dicts
strip_markup: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Version != "2024-07" {
		t.Errorf("Expected version 2024-07, got %q", cfg.Version)
	}
	if len(cfg.Languages) != 3 {
		t.Errorf("Expected 3 languages, got %d", len(cfg.Languages))
	}
	if cfg.StorePath() != "/tmp/tax.db" {
		t.Errorf("Unexpected store path %q", cfg.StorePath())
	}
	if !cfg.StripMarkup {
		t.Error("strip_markup should be set")
	}
	// Unset keys keep their defaults.
	if cfg.SourceLanguage != "en" {
		t.Errorf("Expected default source language, got %q", cfg.SourceLanguage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Loaded config should validate: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/taxoload.yaml")
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Missing file should be ErrInvalidConfig, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("languages: [fi"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Malformed file should be ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty version", func(c *Config) { c.Version = " " }, "version is empty"},
		{"duplicate language", func(c *Config) { c.Languages = []string{"fi", "fi"} }, `"fi" listed twice`},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, "unknown store driver"},
		{"yaml without dir", func(c *Config) { c.Localization.Source = LocalizationYAML }, "yaml_dir"},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }, "cache_size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Fatalf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvVersion:   "2025-01",
		EnvLanguages: " de, ,fr ",
		EnvStore:     "memory",
		EnvLogLevel:  "debug",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) string { return env[k] })

	if cfg.Version != "2025-01" {
		t.Errorf("Version not overridden: %q", cfg.Version)
	}
	if !reflect.DeepEqual(cfg.Languages, []string{"de", "fr"}) {
		t.Errorf("Languages not overridden: %v", cfg.Languages)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("Store not overridden: %q", cfg.Store.Driver)
	}
	if cfg.InputDir != Default().InputDir {
		t.Errorf("Unset variable should keep default, got %q", cfg.InputDir)
	}
}

func TestApplyEnvFromProcess(t *testing.T) {
	t.Setenv(EnvOutputDir, "/srv/out")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.OutputDir != "/srv/out" {
		t.Errorf("Expected output dir from env, got %q", cfg.OutputDir)
	}
}
