package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for the project config.
const DefaultPath = "worldsmith.yaml"

// SupportedSchemes are the storage DSN schemes a project may use.
var SupportedSchemes = []string{"sqlite", "postgres", "postgresql", "file", "memory"}

var logLevels = []string{"debug", "info", "warn", "error"}

type ProjectConfig struct {
	Project   string        `yaml:"project"`
	Version   int           `yaml:"version"`
	Storage   StorageConfig `yaml:"storage"`
	Logging   LoggingConfig `yaml:"logging"`
	Templates string        `yaml:"templates"`
	Ingest    IngestConfig  `yaml:"ingest"`

	dir string
}

type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type IngestConfig struct {
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return fmt.Errorf("storage dsn is required")
	}
	if _, err := cfg.Storage.Scheme(); err != nil {
		return err
	}
	if !containsFold(logLevels, cfg.Logging.Level) {
		return fmt.Errorf("unknown log level: %s", cfg.Logging.Level)
	}
	if !containsFold([]string{"text", "json"}, cfg.Logging.Format) {
		return fmt.Errorf("unknown log format: %s", cfg.Logging.Format)
	}
	for i, p := range cfg.Ingest.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("ingest path %d is empty", i)
		}
	}
	return nil
}

// Scheme returns the lower-cased scheme of the DSN.
func (s StorageConfig) Scheme() (string, error) {
	scheme, _, ok := strings.Cut(s.DSN, "://")
	if !ok {
		return "", fmt.Errorf("storage dsn %q has no scheme", s.DSN)
	}
	scheme = strings.ToLower(scheme)
	if !containsFold(SupportedSchemes, scheme) {
		return "", fmt.Errorf("unsupported storage scheme: %s", scheme)
	}
	return scheme, nil
}

// Resolve makes a relative path relative to the config file's directory.
func (c *ProjectConfig) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}
