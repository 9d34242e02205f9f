package extract

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/shogo/internal/logger"
)

// EventKind discriminates pipeline events.
type EventKind string

const (
	EventPhaseStart EventKind = "phase_start"
	EventPhaseEnd   EventKind = "phase_end"
	EventCandidate  EventKind = "candidate"
	EventEarlyExit  EventKind = "early_exit"
	EventFault      EventKind = "fault"
	EventFetch      EventKind = "fetch"
	EventSelected   EventKind = "selected"
)

// Event describes one observable step of an extraction run.
type Event struct {
	Kind      EventKind  `json:"kind"`
	Time      time.Time  `json:"time"`
	URL       string     `json:"url,omitempty"`
	Phase     string     `json:"phase,omitempty"`
	Candidate *Candidate `json:"candidate,omitempty"`
	Err       string     `json:"error,omitempty"`
	Note      string     `json:"note,omitempty"`
}

// Sink receives pipeline events. Implementations must be safe for
// concurrent use and must not block.
type Sink interface {
	OnEvent(ctx context.Context, event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) OnEvent(context.Context, Event) {}

// LoggerSink writes events to the structured log at debug level, faults at
// warn.
type LoggerSink struct {
	log logger.Interface
}

// NewLoggerSink creates a sink backed by the given logger.
func NewLoggerSink(log logger.Interface) *LoggerSink {
	return &LoggerSink{log: log}
}

func (s *LoggerSink) OnEvent(_ context.Context, event Event) {
	fields := []any{
		"kind", string(event.Kind),
		"phase", event.Phase,
		"url", event.URL,
	}
	if event.Candidate != nil {
		fields = append(fields,
			"value", event.Candidate.Value,
			"method", string(event.Candidate.Method),
			"confidence", event.Candidate.Confidence,
		)
	}
	if event.Note != "" {
		fields = append(fields, "note", event.Note)
	}
	if event.Kind == EventFault {
		fields = append(fields, "error", event.Err)
		s.log.Warn("extraction fault", fields...)
		return
	}
	s.log.Debug("extraction event", fields...)
}

// Bus fans events out to subscribed sinks. Subscription order is dispatch
// order; the subscriber list is snapshotted so sinks may subscribe during
// dispatch.
type Bus struct {
	mu    sync.RWMutex
	sinks []Sink
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a sink. Nil sinks are ignored.
func (b *Bus) Subscribe(sink Sink) {
	if sink == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink)
}

// OnEvent dispatches the event to every subscribed sink, making Bus itself
// a Sink.
func (b *Bus) OnEvent(ctx context.Context, event Event) {
	b.mu.RLock()
	sinks := make([]Sink, len(b.sinks))
	copy(sinks, b.sinks)
	b.mu.RUnlock()

	for _, sink := range sinks {
		sink.OnEvent(ctx, event)
	}
}
