// Package config loads and validates bidvalue configuration from an optional
// YAML file and environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joelkehle/bidvalue/internal/valuation"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Simulation settings.
	Simulations    int    `yaml:"simulations"`
	Workers        int    `yaml:"workers"`         // Partitions per project.
	ProjectWorkers int    `yaml:"project_workers"` // Projects valued at once; 0 means GOMAXPROCS.
	Seed           uint64 `yaml:"seed"`            // 0 seeds from the clock.

	// Decision thresholds. The absolute floors are in the input currency unit.
	Thresholds valuation.DecisionThresholds `yaml:"thresholds"`

	LogLevel string `yaml:"log_level"`

	// OTEL settings.
	OTELEndpoint string `yaml:"otel_endpoint"`
	ServiceName  string `yaml:"service_name"`
	OTELInsecure bool   `yaml:"otel_insecure"`

	// File is the YAML file the config was read from, if any.
	File string `yaml:"-"`
}

func Default() Config {
	return Config{
		Simulations: valuation.DefaultSimulations,
		Workers:     runtime.GOMAXPROCS(0),
		Thresholds:  valuation.DefaultThresholds(),
		LogLevel:    "info",
		ServiceName: "bidvalue",
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// BIDVALUE_CONFIG, then environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("BIDVALUE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.File = path
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	var err error
	if c.Simulations, err = envInt("BIDVALUE_SIMULATIONS", c.Simulations); err != nil {
		errs = append(errs, err)
	}
	if c.Workers, err = envInt("BIDVALUE_WORKERS", c.Workers); err != nil {
		errs = append(errs, err)
	}
	if c.ProjectWorkers, err = envInt("BIDVALUE_PROJECT_WORKERS", c.ProjectWorkers); err != nil {
		errs = append(errs, err)
	}
	if c.Seed, err = envUint("BIDVALUE_SEED", c.Seed); err != nil {
		errs = append(errs, err)
	}
	if c.OTELInsecure, err = envBool("OTEL_INSECURE", c.OTELInsecure); err != nil {
		errs = append(errs, err)
	}
	c.LogLevel = envStr("BIDVALUE_LOG_LEVEL", c.LogLevel)
	c.OTELEndpoint = envStr("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTELEndpoint)
	c.ServiceName = envStr("OTEL_SERVICE_NAME", c.ServiceName)
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Simulations < valuation.MinSimulations || c.Simulations > valuation.MaxSimulations {
		return fmt.Errorf("config: BIDVALUE_SIMULATIONS=%d: %w", c.Simulations, valuation.ErrSimulationCount)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: BIDVALUE_WORKERS must be positive")
	}
	if c.ProjectWorkers < 0 {
		return fmt.Errorf("config: BIDVALUE_PROJECT_WORKERS must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: BIDVALUE_LOG_LEVEL: %w", err)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("config: thresholds: %w", err)
	}
	return nil
}

// Engine returns the valuation engine settings.
func (c Config) Engine() valuation.Config {
	return valuation.Config{
		Simulations: c.Simulations,
		Workers:     c.Workers,
		Seed:        c.Seed,
		Thresholds:  c.Thresholds,
	}
}

// Level returns the parsed log level. Call after Validate.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envUint(key string, defaultVal uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid unsigned integer", key, v)
	}
	return n, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}
