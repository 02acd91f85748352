package pipeline

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/taxoload/pkg/taxoload/config"
)

// ManifestFile is the manifest name inside the output root.
const ManifestFile = "manifest.yaml"

// Manifest records what a run produced.
type Manifest struct {
	RunID          string            `yaml:"run_id"`
	Version        string            `yaml:"version"`
	SourceLanguage string            `yaml:"source_language"`
	Languages      []string          `yaml:"languages"`
	Store          string            `yaml:"store"`
	Tables         map[string]int    `yaml:"tables"`
	Duplicates     map[string]int    `yaml:"duplicates_removed"`
	Coverage       map[string]string `yaml:"coverage,omitempty"`
	Violations     *int              `yaml:"integrity_violations,omitempty"`
	Started        time.Time         `yaml:"started"`
	Finished       time.Time         `yaml:"finished"`
}

func newRunID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

func newManifest(cfg config.Config, sum Summary) Manifest {
	m := Manifest{
		RunID:          sum.RunID,
		Version:        cfg.Version,
		SourceLanguage: cfg.SourceLanguage,
		Languages:      cfg.Languages,
		Store:          cfg.Store.Driver,
		Tables:         sum.Tables,
		Duplicates:     sum.Duplicates,
		Started:        sum.Started,
		Finished:       sum.Finished,
	}
	if len(sum.Coverage) > 0 {
		m.Coverage = make(map[string]string, len(sum.Coverage))
		for _, c := range sum.Coverage {
			m.Coverage[c.Entity] = fmt.Sprintf("%d/%d", c.Found, c.Expected)
		}
	}
	if sum.Integrity != nil {
		n := len(sum.Integrity.Violations)
		m.Violations = &n
	}
	return m
}

// WriteManifest writes m as YAML to path, creating parent directories.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}
