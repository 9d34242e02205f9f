package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default robots checker values.
const (
	// DefaultRobotsCacheTTL is how long a parsed robots.txt is reused.
	DefaultRobotsCacheTTL = 1 * time.Hour
	// DefaultRobotsTimeout is the robots.txt request timeout.
	DefaultRobotsTimeout = 10 * time.Second
	// DefaultRobotsMaxBodySize caps robots.txt bodies.
	DefaultRobotsMaxBodySize = 512 * 1024 // 512KB
)

// RobotsConfig holds robots.txt checker configuration.
type RobotsConfig struct {
	// Enabled toggles robots.txt checks before fetching
	Enabled bool `env:"ROBOTS_ENABLED" yaml:"enabled"`
	// CacheTTL is how long a parsed robots.txt is reused per host
	CacheTTL time.Duration `env:"ROBOTS_CACHE_TTL" yaml:"cache_ttl"`
	// Timeout is the robots.txt request timeout
	Timeout time.Duration `env:"ROBOTS_TIMEOUT" yaml:"timeout"`
	// MaxBodySize caps the bytes read from robots.txt
	MaxBodySize int64 `env:"ROBOTS_MAX_BODY_SIZE" yaml:"max_body_size"`
}

func loadRobotsConfig() RobotsConfig {
	return RobotsConfig{
		Enabled:     viper.GetBool("robots.enabled"),
		CacheTTL:    viper.GetDuration("robots.cache_ttl"),
		Timeout:     viper.GetDuration("robots.timeout"),
		MaxBodySize: viper.GetInt64("robots.max_body_size"),
	}
}

// Validate checks robots configuration values.
func (c *RobotsConfig) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%w: robots.cache_ttl must be positive", ErrInvalidValue)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: robots.timeout must be positive", ErrInvalidValue)
	}
	return nil
}
