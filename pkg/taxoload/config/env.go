package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvVersion   = "TAXOLOAD_VERSION"
	EnvLanguages = "TAXOLOAD_LANGUAGES"
	EnvInputDir  = "TAXOLOAD_INPUT_DIR"
	EnvOutputDir = "TAXOLOAD_OUTPUT_DIR"
	EnvStore     = "TAXOLOAD_STORE"
	EnvStorePath = "TAXOLOAD_STORE_PATH"
	EnvLogLevel  = "TAXOLOAD_LOG_LEVEL"
)

// LoadDotenv loads .env from the working directory if present.
func LoadDotenv() {
	_ = godotenv.Load()
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvVersion)); v != "" {
		c.Version = v
	}
	if v := strings.TrimSpace(getenv(EnvLanguages)); v != "" {
		c.Languages = SplitLanguages(v)
	}
	if v := strings.TrimSpace(getenv(EnvInputDir)); v != "" {
		c.InputDir = v
	}
	if v := strings.TrimSpace(getenv(EnvOutputDir)); v != "" {
		c.OutputDir = v
	}
	if v := strings.TrimSpace(getenv(EnvStore)); v != "" {
		c.Store.Driver = v
	}
	if v := strings.TrimSpace(getenv(EnvStorePath)); v != "" {
		c.Store.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

// SplitLanguages parses a comma separated language list, dropping blanks.
func SplitLanguages(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
