// Package config loads runtime settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables recognized by Load.
const (
	EnvStoragePath        = "DIAGNOSTICS_STORAGE_PATH"
	EnvStorageDriver      = "DIAGNOSTICS_STORAGE_DRIVER"
	EnvProbeTimeout       = "PROBE_TIMEOUT_SECONDS"
	EnvCoordinatorTimeout = "COORDINATOR_TIMEOUT_SECONDS"
	EnvTestMode           = "DIAGNOSTIC_TEST_MODE"
)

// Storage driver names.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config holds the runtime settings for a diagnostic run.
type Config struct {
	// StoragePath is the reports directory (file driver) or database
	// file (sqlite driver).
	StoragePath string `yaml:"storage_path" validate:"required"`

	// StorageDriver selects the repository backend.
	StorageDriver string `yaml:"storage_driver" validate:"oneof=file sqlite"`

	// ProbeTimeoutSeconds bounds each individual probe.
	ProbeTimeoutSeconds int `yaml:"probe_timeout_seconds" validate:"min=1,max=300"`

	// CoordinatorTimeoutSeconds bounds a whole diagnostic run and must
	// not be shorter than the probe timeout.
	CoordinatorTimeoutSeconds int `yaml:"coordinator_timeout_seconds" validate:"min=1,max=600,gtefield=ProbeTimeoutSeconds"`

	// TestMode short-circuits diagnostic runs to a simulated report.
	TestMode bool `yaml:"test_mode"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		StoragePath:               "diagnostics",
		StorageDriver:             DriverFile,
		ProbeTimeoutSeconds:       15,
		CoordinatorTimeoutSeconds: 45,
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment overrides, and finally
// validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(body, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvStoragePath); v != "" {
		c.StoragePath = v
	}
	if v := os.Getenv(EnvStorageDriver); v != "" {
		c.StorageDriver = v
	}
	if v := os.Getenv(EnvProbeTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvProbeTimeout, v, err)
		}
		c.ProbeTimeoutSeconds = n
	}
	if v := os.Getenv(EnvCoordinatorTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvCoordinatorTimeout, v, err)
		}
		c.CoordinatorTimeoutSeconds = n
	}
	if v := os.Getenv(EnvTestMode); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTestMode, v, err)
		}
		c.TestMode = b
	}
	return nil
}

// Validate checks the configuration constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ProbeTimeout returns the per-probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// CoordinatorTimeout returns the whole-run timeout as a duration.
func (c *Config) CoordinatorTimeout() time.Duration {
	return time.Duration(c.CoordinatorTimeoutSeconds) * time.Second
}
