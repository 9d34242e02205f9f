package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default server values.
const (
	DefaultServerAddress      = ":8080"
	DefaultServerReadTimeout  = 30 * time.Second
	DefaultServerWriteTimeout = 30 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
)

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	// Address is the listen address
	Address string `env:"SERVER_ADDRESS" yaml:"address"`
	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// WriteTimeout is the maximum duration for writing a response
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// IdleTimeout is the keep-alive idle limit
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// SecurityEnabled turns on API key checks for protected routes
	SecurityEnabled bool `yaml:"security_enabled"`
	// APIKey is the key clients must send in X-API-Key
	APIKey string `env:"SERVER_API_KEY" yaml:"api_key"`
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Address:         viper.GetString("server.address"),
		ReadTimeout:     viper.GetDuration("server.read_timeout"),
		WriteTimeout:    viper.GetDuration("server.write_timeout"),
		IdleTimeout:     viper.GetDuration("server.idle_timeout"),
		SecurityEnabled: viper.GetBool("server.security_enabled"),
		APIKey:          viper.GetString("server.api_key"),
	}
}

// Validate checks server configuration values.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("%w: server.address", ErrMissingValue)
	}
	if c.SecurityEnabled && c.APIKey == "" {
		return fmt.Errorf("%w: server.api_key (security enabled)", ErrMissingValue)
	}
	return nil
}
