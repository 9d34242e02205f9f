package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONL appends one JSON object per line to a file. It is the default
// sink: no external service required, and the output is easy to diff
// and re-import.
type JSONL struct {
	mu   sync.Mutex
	file *os.File
}

// NewJSONL opens path for appending, creating it if needed.
func NewJSONL(path string) (*JSONL, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file %s: %w", path, err)
	}
	return &JSONL{file: file}, nil
}

// Store appends rec as a single JSON line.
func (s *JSONL) Store(_ context.Context, rec *Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *JSONL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
