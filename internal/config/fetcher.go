package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default fetcher values.
const (
	// DefaultFetchTimeout is the per-request timeout.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultMaxRetries is the number of attempts for retryable failures.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the base delay before the first retry.
	DefaultRetryDelay = 1 * time.Second
	// DefaultMaxBodySize caps response bodies read into memory.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
	// DefaultMaxRedirects is the maximum number of redirects to follow.
	DefaultMaxRedirects = 10
	// DefaultUserAgent is sent with every page request.
	DefaultUserAgent = "Mozilla/5.0 (compatible; shogo/1.0; +https://github.com/jonesrussell/shogo)"
)

// FetcherConfig holds HTTP fetcher configuration.
type FetcherConfig struct {
	// Timeout is the per-request timeout
	Timeout time.Duration `env:"FETCHER_TIMEOUT" yaml:"timeout"`
	// MaxRetries is the number of attempts for 429/5xx/network failures
	MaxRetries int `env:"FETCHER_MAX_RETRIES" yaml:"max_retries"`
	// RetryDelay is the base backoff delay, doubled per attempt
	RetryDelay time.Duration `env:"FETCHER_RETRY_DELAY" yaml:"retry_delay"`
	// MaxBodySize caps the bytes read from a response body
	MaxBodySize int64 `env:"FETCHER_MAX_BODY_SIZE" yaml:"max_body_size"`
	// MaxRedirects is the maximum number of redirects to follow
	MaxRedirects int `env:"FETCHER_MAX_REDIRECTS" yaml:"max_redirects"`
	// UserAgent is the User-Agent header value
	UserAgent string `env:"FETCHER_USER_AGENT" yaml:"user_agent"`
}

func loadFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:      viper.GetDuration("fetcher.timeout"),
		MaxRetries:   viper.GetInt("fetcher.max_retries"),
		RetryDelay:   viper.GetDuration("fetcher.retry_delay"),
		MaxBodySize:  viper.GetInt64("fetcher.max_body_size"),
		MaxRedirects: viper.GetInt("fetcher.max_redirects"),
		UserAgent:    viper.GetString("fetcher.user_agent"),
	}
}

// Validate checks fetcher configuration values.
func (c *FetcherConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: fetcher.timeout must be positive", ErrInvalidValue)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: fetcher.max_retries must be at least 1", ErrInvalidValue)
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("%w: fetcher.max_body_size must be positive", ErrInvalidValue)
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("%w: fetcher.max_redirects must not be negative", ErrInvalidValue)
	}
	return nil
}
