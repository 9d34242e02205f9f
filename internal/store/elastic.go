package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/shogo/internal/logger"
)

// DefaultIndexTimeout bounds a single index or index-management call.
const DefaultIndexTimeout = 10 * time.Second

// profileMapping types the fields the summary and re-import tooling
// query on. Company and site stay dynamic.
var profileMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"url":          map[string]any{"type": "keyword"},
			"final_url":    map[string]any{"type": "keyword"},
			"given_name":   map[string]any{"type": "keyword"},
			"row_id":       map[string]any{"type": "keyword"},
			"run_id":       map[string]any{"type": "keyword"},
			"outcome":      map[string]any{"type": "keyword"},
			"status_code":  map[string]any{"type": "integer"},
			"elapsed_ms":   map[string]any{"type": "long"},
			"processed_at": map[string]any{"type": "date"},
		},
	},
}

// ElasticConfig holds Elasticsearch sink settings.
type ElasticConfig struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Elastic indexes records into an Elasticsearch index, keyed by
// normalized URL hash so re-runs overwrite stale documents.
type Elastic struct {
	client *es.Client
	index  string
	log    logger.Interface
}

// NewElastic creates the client and ensures the target index exists.
func NewElastic(cfg ElasticConfig, log logger.Interface) (*Elastic, error) {
	client, err := es.NewClient(es.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	sink := &Elastic{client: client, index: cfg.Index, log: log}
	if err := sink.ensureIndex(context.Background()); err != nil {
		return nil, err
	}
	return sink, nil
}

func (s *Elastic) ensureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultIndexTimeout)
	defer cancel()

	res, err := s.client.Indices.Exists(
		[]string{s.index},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected response checking index %s: %s", s.index, res.String())
	}

	var buf bytes.Buffer
	if encodeErr := json.NewEncoder(&buf).Encode(profileMapping); encodeErr != nil {
		return fmt.Errorf("error encoding mapping: %w", encodeErr)
	}

	createRes, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(&buf),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", s.index, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index %s: %s", s.index, createRes.String())
	}

	s.log.Info("Created index", "index", s.index)
	return nil
}

// Store indexes rec as a single document.
func (s *Elastic) Store(ctx context.Context, rec *Record) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultIndexTimeout)
	defer cancel()

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(rec.Key()),
	)
	if err != nil {
		return fmt.Errorf("failed to index record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		s.log.Error("Elasticsearch returned error response",
			"error", res.String(),
			"index", s.index,
			"url", rec.URL,
		)
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}

	s.log.Debug("Indexed record",
		"index", s.index,
		"url", rec.URL,
	)
	return nil
}

// Close is a no-op; the Elasticsearch client has no connection to
// release.
func (s *Elastic) Close() error {
	return nil
}
