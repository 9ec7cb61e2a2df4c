// Package config provides configuration management.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"wireless-quote/internal/logging"
)

// EnvironmentProduction relaxes invariant guards from fail-fast to clamp-and-log
const EnvironmentProduction = "production"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" mapstructure:"version"`

	// Catalog locates the reference catalog
	Catalog CatalogConfig `json:"catalog" mapstructure:"catalog"`

	// Engine tunes quote computation
	Engine EngineConfig `json:"engine" mapstructure:"engine"`

	// Output contains output configuration
	Output OutputConfig `json:"output" mapstructure:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" mapstructure:"logging"`
}

// CatalogConfig contains reference catalog settings
type CatalogConfig struct {
	// Path is an HCL catalog file. Empty means the built-in catalog.
	Path string `json:"path" mapstructure:"path"`

	// ReloadIntervalSeconds polls Path for changes; 0 disables reloading
	ReloadIntervalSeconds int `json:"reload_interval_seconds" mapstructure:"reload_interval_seconds"`
}

// EngineConfig contains engine settings
type EngineConfig struct {
	// Environment is the deployment environment (development, staging, production)
	Environment string `json:"environment" mapstructure:"environment"`

	// StrictInvariants overrides the environment-derived guard mode when set
	StrictInvariants *bool `json:"strict_invariants,omitempty" mapstructure:"strict_invariants"`

	// BatchConcurrency caps parallel quotes in a batch; 0 means GOMAXPROCS
	BatchConcurrency int `json:"batch_concurrency" mapstructure:"batch_concurrency"`
}

// Strict reports whether invariant violations must fail loudly
func (c EngineConfig) Strict() bool {
	if c.StrictInvariants != nil {
		return *c.StrictInvariants
	}
	return !strings.EqualFold(c.Environment, EnvironmentProduction)
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (table, json)
	DefaultFormat string `json:"default_format" mapstructure:"default_format"`

	// ShowExact prints unrounded amounts next to display amounts
	ShowExact bool `json:"show_exact" mapstructure:"show_exact"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{},
		Engine: EngineConfig{
			Environment: "development",
		},
		Output: OutputConfig{
			DefaultFormat: "table",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads configuration from path (JSON or YAML) with WQUOTE_* environment
// overrides. A missing file yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("WQUOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// keys without a default are invisible to AutomaticEnv
	_ = v.BindEnv("engine.strict_invariants")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)
	v.SetDefault("catalog.path", cfg.Catalog.Path)
	v.SetDefault("catalog.reload_interval_seconds", cfg.Catalog.ReloadIntervalSeconds)
	v.SetDefault("engine.environment", cfg.Engine.Environment)
	v.SetDefault("engine.batch_concurrency", cfg.Engine.BatchConcurrency)
	v.SetDefault("output.default_format", cfg.Output.DefaultFormat)
	v.SetDefault("output.show_exact", cfg.Output.ShowExact)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
	v.SetDefault("logging.development", cfg.Logging.Development)
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
