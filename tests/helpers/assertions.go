// Package helpers provides testing utilities for integration tests.
package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	// DefaultHealthCheckInterval is the default interval for readiness polls.
	DefaultHealthCheckInterval = 100 * time.Millisecond
)

// GetDocument fetches a document source from Elasticsearch by ID.
func GetDocument(ctx context.Context, address, index, id string) (map[string]any, error) {
	resp, err := esRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%s/_doc/%s", address, index, id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document %s/%s returned status %d", index, id, resp.StatusCode)
	}

	var envelope struct {
		Source map[string]any `json:"_source"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode document: %w", decodeErr)
	}
	return envelope.Source, nil
}

// CountDocuments refreshes an index and returns its document count.
func CountDocuments(ctx context.Context, address, index string) (int64, error) {
	refresh, err := esRequest(ctx, http.MethodPost, fmt.Sprintf("%s/%s/_refresh", address, index))
	if err != nil {
		return 0, err
	}
	refresh.Body.Close()

	resp, err := esRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%s/_count", address, index))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("count for index %s returned status %d", index, resp.StatusCode)
	}

	var envelope struct {
		Count int64 `json:"count"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil {
		return 0, fmt.Errorf("failed to decode count: %w", decodeErr)
	}
	return envelope.Count, nil
}

// WaitForDocumentIndexed polls until document is indexed or times out.
func WaitForDocumentIndexed(
	t require.TestingT,
	ctx context.Context,
	address, index, id string,
	timeout time.Duration,
) {
	require.Eventually(t, func() bool {
		_, err := GetDocument(ctx, address, index, id)
		return err == nil
	}, timeout, DefaultHealthCheckInterval,
		"document %q not indexed in index %q within %v", id, index, timeout)
}

// WaitForDocumentCount polls until document count matches or times out.
func WaitForDocumentCount(
	t require.TestingT,
	ctx context.Context,
	address, index string,
	expectedCount int,
	timeout time.Duration,
) {
	require.Eventually(t, func() bool {
		count, err := CountDocuments(ctx, address, index)
		if err != nil {
			return false
		}
		return count == int64(expectedCount)
	}, timeout, DefaultHealthCheckInterval,
		"expected %d documents in index %q, timeout after %v",
		expectedCount, index, timeout)
}

func esRequest(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(ElasticsearchUser, ElasticsearchPassword)

	client := &http.Client{Timeout: DefaultHTTPClientTimeout}
	return client.Do(req)
}
