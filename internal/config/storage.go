package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Result sink backends.
const (
	// BackendJSONL appends result records to a JSONL file.
	BackendJSONL = "jsonl"
	// BackendPostgres upserts result records into Postgres.
	BackendPostgres = "postgres"
	// BackendElasticsearch indexes result records into Elasticsearch.
	BackendElasticsearch = "elasticsearch"
)

// Default storage values.
const (
	DefaultJSONLPath = "results.jsonl"
	DefaultESAddress = "http://localhost:9200"
	DefaultESIndex   = "company_profiles"
)

// StorageConfig holds result sink configuration.
type StorageConfig struct {
	// Backend selects the sink: jsonl, postgres, elasticsearch
	Backend string `env:"STORAGE_BACKEND" yaml:"backend"`
	// JSONLPath is the output path for the jsonl backend
	JSONLPath string `env:"STORAGE_JSONL_PATH" yaml:"jsonl_path"`
	// PostgresDSN is the connection string for the postgres backend
	PostgresDSN string `env:"STORAGE_POSTGRES_DSN" yaml:"postgres_dsn"`
	// Elasticsearch holds the elasticsearch backend settings
	Elasticsearch ESConfig `yaml:"elasticsearch"`
}

// ESConfig holds Elasticsearch sink settings.
type ESConfig struct {
	// Addresses is the list of cluster node URLs
	Addresses []string `env:"ELASTICSEARCH_ADDRESSES" yaml:"addresses"`
	// Index is the target index name
	Index string `env:"ELASTICSEARCH_INDEX" yaml:"index"`
	// Username authenticates against the cluster
	Username string `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	// Password authenticates against the cluster
	Password string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Backend:     viper.GetString("storage.backend"),
		JSONLPath:   viper.GetString("storage.jsonl_path"),
		PostgresDSN: viper.GetString("storage.postgres_dsn"),
		Elasticsearch: ESConfig{
			Addresses: viper.GetStringSlice("storage.elasticsearch.addresses"),
			Index:     viper.GetString("storage.elasticsearch.index"),
			Username:  viper.GetString("storage.elasticsearch.username"),
			Password:  viper.GetString("storage.elasticsearch.password"),
		},
	}
}

// Validate checks storage configuration values.
func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case BackendJSONL:
		if c.JSONLPath == "" {
			return fmt.Errorf("%w: storage.jsonl_path", ErrMissingValue)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: storage.postgres_dsn", ErrMissingValue)
		}
	case BackendElasticsearch:
		if len(c.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("%w: storage.elasticsearch.addresses", ErrMissingValue)
		}
		if c.Elasticsearch.Index == "" {
			return fmt.Errorf("%w: storage.elasticsearch.index", ErrMissingValue)
		}
	default:
		return fmt.Errorf("%w: storage.backend %q", ErrInvalidValue, c.Backend)
	}
	return nil
}
