package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default batch values.
const (
	// DefaultBatchWorkers is the number of concurrent row workers.
	DefaultBatchWorkers = 4
	// DefaultRowTimeout bounds one row's full pipeline.
	DefaultRowTimeout = 90 * time.Second
	// DefaultBatchDelay is the politeness delay between rows per worker.
	DefaultBatchDelay = 1 * time.Second
	// DefaultBatchRandomDelay is the jitter added to the politeness delay.
	DefaultBatchRandomDelay = 2 * time.Second
)

// BatchConfig holds batch enrichment configuration.
type BatchConfig struct {
	// Workers is the number of concurrent row workers
	Workers int `env:"BATCH_WORKERS" yaml:"workers"`
	// RowTimeout bounds one row's fetch+extract pipeline
	RowTimeout time.Duration `env:"BATCH_ROW_TIMEOUT" yaml:"row_timeout"`
	// Delay is the politeness delay between rows per worker
	Delay time.Duration `env:"BATCH_DELAY" yaml:"delay"`
	// RandomDelay is the maximum jitter added to Delay
	RandomDelay time.Duration `env:"BATCH_RANDOM_DELAY" yaml:"random_delay"`
}

func loadBatchConfig() BatchConfig {
	return BatchConfig{
		Workers:     viper.GetInt("batch.workers"),
		RowTimeout:  viper.GetDuration("batch.row_timeout"),
		Delay:       viper.GetDuration("batch.delay"),
		RandomDelay: viper.GetDuration("batch.random_delay"),
	}
}

// Validate checks batch configuration values.
func (c *BatchConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: batch.workers must be at least 1", ErrInvalidValue)
	}
	if c.RowTimeout <= 0 {
		return fmt.Errorf("%w: batch.row_timeout must be positive", ErrInvalidValue)
	}
	if c.Delay < 0 || c.RandomDelay < 0 {
		return fmt.Errorf("%w: batch delays must not be negative", ErrInvalidValue)
	}
	return nil
}
