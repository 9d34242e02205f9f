// Package store persists enrichment records produced by extraction runs.
// Three sinks are provided: a JSONL file appender, a Postgres repository,
// and an Elasticsearch indexer.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/shogo/internal/config"
	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/logger"
	"github.com/jonesrussell/shogo/internal/siteinfo"
	"github.com/jonesrussell/shogo/internal/urlnorm"
)

// Row outcomes.
const (
	// OutcomeOK marks a row whose pipeline completed.
	OutcomeOK = "ok"
	// OutcomeFailed marks a row that errored before producing a result.
	OutcomeFailed = "failed"
	// OutcomeRobotsBlocked marks a row skipped because robots.txt
	// disallows the URL.
	OutcomeRobotsBlocked = "robots_blocked"
)

// Record is one enrichment outcome ready for persistence. GivenName is
// the name supplied by the input list, carried through untouched so
// failed rows still identify their company.
type Record struct {
	RowID       string         `json:"row_id,omitempty"`
	RunID       string         `json:"run_id,omitempty"`
	URL         string         `json:"url"`
	FinalURL    string         `json:"final_url,omitempty"`
	GivenName   string         `json:"given_name,omitempty"`
	StatusCode  int            `json:"status_code,omitempty"`
	Outcome     string         `json:"outcome"`
	Company     extract.Result `json:"company"`
	Site        siteinfo.Info  `json:"site"`
	Error       string         `json:"error,omitempty"`
	ElapsedMS   int64          `json:"elapsed_ms"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// Key returns the stable storage key for the record: the hash of its
// normalized URL. Records for equivalent URLs overwrite each other, so
// re-running a batch refreshes stored results instead of duplicating
// them. Unparseable URLs fall back to the raw string.
func (r *Record) Key() string {
	hash, err := urlnorm.Hash(r.URL)
	if err != nil {
		return r.URL
	}
	return hash
}

// Sink persists records. Implementations must be safe for concurrent
// use by multiple workers.
type Sink interface {
	Store(ctx context.Context, rec *Record) error
	Close() error
}

// New builds the sink selected by cfg.Backend.
func New(cfg *config.StorageConfig, log logger.Interface) (Sink, error) {
	switch cfg.Backend {
	case config.BackendJSONL:
		return NewJSONL(cfg.JSONLPath)
	case config.BackendPostgres:
		return NewPostgres(cfg.PostgresDSN, log)
	case config.BackendElasticsearch:
		return NewElastic(ElasticConfig{
			Addresses: cfg.Elasticsearch.Addresses,
			Index:     cfg.Elasticsearch.Index,
			Username:  cfg.Elasticsearch.Username,
			Password:  cfg.Elasticsearch.Password,
		}, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
