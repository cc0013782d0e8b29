// Package config handles MPE viewer configuration loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iafilius/MPEViewer/src/client"
	"github.com/iafilius/MPEViewer/src/types"
)

// Environment variables that override file settings.
const (
	EnvBaseURL   = "MPE_BASE_URL"
	EnvLogLevel  = "MPE_LOG_LEVEL"
	EnvExportDir = "MPE_EXPORT_DIR"
	EnvDegree    = "MPE_DEGREE"
	EnvTimeout   = "MPE_TIMEOUT"
)

// Config is the root configuration structure.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Export  ExportConfig  `yaml:"export"`
	Surface SurfaceConfig `yaml:"surface"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig holds the data server settings.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ViewerConfig holds page defaults.
type ViewerConfig struct {
	Degree     string `yaml:"degree"`
	ChartWidth int    `yaml:"chart_width"`
	Hints      bool   `yaml:"hints"`
}

// ExportConfig holds PDF output settings.
type ExportConfig struct {
	Dir         string `yaml:"dir"`
	Orientation string `yaml:"orientation"` // "P" or "L"
	PageSize    string `yaml:"page_size"`
}

// SurfaceConfig holds the 3-D camera.
type SurfaceConfig struct {
	Azimuth    float64 `yaml:"azimuth"`
	Elevation  float64 `yaml:"elevation"`
	Resolution int     `yaml:"resolution"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     client.DefaultBaseURL,
			Timeout: 60 * time.Second,
		},
		Viewer: ViewerConfig{
			Degree:     types.Degree6,
			ChartWidth: 1000,
		},
		Export: ExportConfig{
			Dir:         ".",
			Orientation: "P",
			PageSize:    "A4",
		},
		Surface: SurfaceConfig{
			Azimuth:    45,
			Elevation:  30,
			Resolution: 40,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns default if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" {
		return errors.New("backend.url must not be empty")
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative, got %s", c.Backend.Timeout)
	}
	valid := false
	for _, d := range types.Degrees {
		if c.Viewer.Degree == d {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("viewer.degree %q is not one of %s", c.Viewer.Degree, strings.Join(types.Degrees, ", "))
	}
	switch strings.ToUpper(c.Export.Orientation) {
	case "", "P", "L":
	default:
		return fmt.Errorf("export.orientation %q must be P or L", c.Export.Orientation)
	}
	return nil
}

// LoadEnv reads .env files into the process environment. Missing files are
// skipped; variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides file settings with MPE_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvExportDir); v != "" {
		c.Export.Dir = v
	}
	if v := os.Getenv(EnvDegree); v != "" {
		c.Viewer.Degree = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// plain seconds are accepted too
			secs, serr := strconv.Atoi(v)
			if serr != nil {
				return fmt.Errorf("%s: %w", EnvTimeout, err)
			}
			d = time.Duration(secs) * time.Second
		}
		c.Backend.Timeout = d
	}
	return c.Validate()
}

// Resolve is the start-up sequence of both front-ends: .env, file, then
// environment overrides.
func Resolve(path string) (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	if _, err := os.Stat("mpeviewer.yaml"); err == nil {
		return "mpeviewer.yaml"
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "mpeviewer", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "mpeviewer.yaml"
}
