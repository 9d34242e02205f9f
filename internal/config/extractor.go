package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Default extractor values.
const (
	// DefaultMaxAuxPages bounds the auxiliary company/about pages fetched
	// per extraction call.
	DefaultMaxAuxPages = 15
)

// ExtractorConfig holds extraction engine configuration.
type ExtractorConfig struct {
	// MaxAuxPages is the maximum number of auxiliary pages fetched per call
	MaxAuxPages int `env:"EXTRACTOR_MAX_AUX_PAGES" yaml:"max_aux_pages"`
}

func loadExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxAuxPages: viper.GetInt("extractor.max_aux_pages"),
	}
}

// Validate checks extractor configuration values.
func (c *ExtractorConfig) Validate() error {
	if c.MaxAuxPages < 0 {
		return fmt.Errorf("%w: extractor.max_aux_pages must not be negative", ErrInvalidValue)
	}
	return nil
}
