// Package metrics provides metrics collection and reporting functionality.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/store"
)

// Metrics holds the counters for one enrichment run.
type Metrics struct {
	// RowsProcessed is the number of rows that completed the pipeline.
	RowsProcessed int64
	// RowsFailed is the number of rows that errored.
	RowsFailed int64
	// RowsBlocked is the number of rows skipped by robots.txt.
	RowsBlocked int64
	// NamesFound is the number of rows that produced a company name.
	NamesFound int64
	// PagesFetched is the number of pages fetched, auxiliary pages included.
	PagesFetched int64
	// CandidatesProduced is the number of extraction candidates emitted.
	CandidatesProduced int64
	// AISuggestions is the number of AI candidates offered during merge.
	AISuggestions int64
	// Faults is the number of recovered phase or capability faults.
	Faults int64
	// SinkWrites is the number of records persisted.
	SinkWrites int64
	// SinkErrors is the number of failed persistence attempts.
	SinkErrors int64
	// StartTime is when the metrics collection began.
	StartTime time.Time
	// mu protects concurrent access to metrics.
	mu sync.Mutex
}

// NewMetrics creates a new Metrics instance with default values.
func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// GetStartTime returns the time when metrics collection began.
func (m *Metrics) GetStartTime() time.Time {
	return m.StartTime
}

// ObserveRow updates the row counters for one finished record.
func (m *Metrics) ObserveRow(rec *store.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RowsProcessed++
	switch rec.Outcome {
	case store.OutcomeFailed:
		m.RowsFailed++
	case store.OutcomeRobotsBlocked:
		m.RowsBlocked++
	}
	if rec.Company.Value != "" {
		m.NamesFound++
	}
}

// IncrementSinkWrites increments the persisted-record counter.
func (m *Metrics) IncrementSinkWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SinkWrites++
}

// IncrementSinkErrors increments the failed-persistence counter.
func (m *Metrics) IncrementSinkErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SinkErrors++
}

// IncrementPagesFetched increments the fetched-page counter.
func (m *Metrics) IncrementPagesFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagesFetched++
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	RowsProcessed      int64
	RowsFailed         int64
	RowsBlocked        int64
	NamesFound         int64
	PagesFetched       int64
	CandidatesProduced int64
	AISuggestions      int64
	Faults             int64
	SinkWrites         int64
	SinkErrors         int64
	Uptime             time.Duration
}

// Snapshot copies the current counters for reporting.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		RowsProcessed:      m.RowsProcessed,
		RowsFailed:         m.RowsFailed,
		RowsBlocked:        m.RowsBlocked,
		NamesFound:         m.NamesFound,
		PagesFetched:       m.PagesFetched,
		CandidatesProduced: m.CandidatesProduced,
		AISuggestions:      m.AISuggestions,
		Faults:             m.Faults,
		SinkWrites:         m.SinkWrites,
		SinkErrors:         m.SinkErrors,
		Uptime:             time.Since(m.StartTime),
	}
}

// ResetMetrics resets all counters to their initial values.
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RowsProcessed = 0
	m.RowsFailed = 0
	m.RowsBlocked = 0
	m.NamesFound = 0
	m.PagesFetched = 0
	m.CandidatesProduced = 0
	m.AISuggestions = 0
	m.Faults = 0
	m.SinkWrites = 0
	m.SinkErrors = 0
}

// EventSink feeds engine events into the counters. It satisfies
// extract.Sink so it can be subscribed to an engine event bus.
type EventSink struct {
	m *Metrics
}

// NewEventSink wraps m as an engine event subscriber.
func NewEventSink(m *Metrics) *EventSink {
	return &EventSink{m: m}
}

// OnEvent counts candidates, auxiliary fetches, AI suggestions, and faults.
func (s *EventSink) OnEvent(_ context.Context, e extract.Event) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	switch e.Kind {
	case extract.EventCandidate:
		s.m.CandidatesProduced++
		if e.Candidate != nil && e.Candidate.Method == extract.MethodAI {
			s.m.AISuggestions++
		}
	case extract.EventFetch:
		if e.Err == "" {
			s.m.PagesFetched++
		}
	case extract.EventFault:
		s.m.Faults++
	}
}
