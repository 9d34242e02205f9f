// Package config provides configuration management for the shogo application.
// It handles loading, validation, and access to configuration values from
// YAML files and environment variables via Viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/shogo/internal/logger"
)

// Config represents the application configuration.
type Config struct {
	// App holds application-wide settings
	App AppConfig `yaml:"app"`
	// Logging holds logger configuration
	Logging logger.Config `yaml:"logging"`
	// Extractor holds extraction engine configuration
	Extractor ExtractorConfig `yaml:"extractor"`
	// Fetcher holds HTTP fetcher configuration
	Fetcher FetcherConfig `yaml:"fetcher"`
	// Robots holds robots.txt checker configuration
	Robots RobotsConfig `yaml:"robots"`
	// AI holds AI-assisted extraction configuration
	AI AIConfig `yaml:"ai"`
	// Batch holds batch enrichment configuration
	Batch BatchConfig `yaml:"batch"`
	// Storage holds result sink configuration
	Storage StorageConfig `yaml:"storage"`
	// Server holds HTTP API server configuration
	Server ServerConfig `yaml:"server"`
}

// AppConfig holds application-wide settings.
type AppConfig struct {
	// Name is the application name used in logs and user agents
	Name string `env:"APP_NAME" yaml:"name"`
	// Environment is the deployment environment (development, production)
	Environment string `env:"APP_ENV" yaml:"environment"`
	// Debug enables debug logging and development encoders
	Debug bool `env:"APP_DEBUG" yaml:"debug"`
}

// Default application values.
const (
	DefaultAppName     = "shogo"
	DefaultEnvironment = "development"
)

// Load builds the configuration from the initialized Viper state.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        viper.GetString("app.name"),
			Environment: viper.GetString("app.environment"),
			Debug:       viper.GetBool("app.debug"),
		},
		Logging: logger.Config{
			Level:       logger.Level(viper.GetString("logging.level")),
			Development: viper.GetBool("logging.development"),
			Encoding:    viper.GetString("logging.encoding"),
		},
		Extractor: loadExtractorConfig(),
		Fetcher:   loadFetcherConfig(),
		Robots:    loadRobotsConfig(),
		AI:        loadAIConfig(),
		Batch:     loadBatchConfig(),
		Storage:   loadStorageConfig(),
		Server:    loadServerConfig(),
	}

	if cfg.App.Debug {
		cfg.Logging.Level = logger.DebugLevel
		cfg.Logging.Development = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := c.Extractor.Validate(); err != nil {
		return err
	}
	if err := c.Fetcher.Validate(); err != nil {
		return err
	}
	if err := c.Robots.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if err := c.Batch.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}
