package metrics_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/metrics"
	"github.com/jonesrussell/shogo/internal/store"
)

func TestNewMetrics(t *testing.T) {
	m := metrics.NewMetrics()
	assert.NotNil(t, m)
	assert.False(t, m.GetStartTime().IsZero())
}

func TestObserveRow(t *testing.T) {
	m := metrics.NewMetrics()

	m.ObserveRow(&store.Record{
		Outcome: store.OutcomeOK,
		Company: extract.Result{Value: "株式会社テスト"},
	})
	m.ObserveRow(&store.Record{Outcome: store.OutcomeFailed})
	m.ObserveRow(&store.Record{Outcome: store.OutcomeRobotsBlocked})

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.RowsProcessed)
	assert.Equal(t, int64(1), snap.RowsFailed)
	assert.Equal(t, int64(1), snap.RowsBlocked)
	assert.Equal(t, int64(1), snap.NamesFound)
}

func TestSinkCounters(t *testing.T) {
	m := metrics.NewMetrics()

	m.IncrementSinkWrites()
	m.IncrementSinkWrites()
	m.IncrementSinkErrors()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.SinkWrites, "Should have 2 sink writes")
	assert.Equal(t, int64(1), snap.SinkErrors, "Should have 1 sink error")
}

func TestResetMetrics(t *testing.T) {
	m := metrics.NewMetrics()
	m.ObserveRow(&store.Record{Outcome: store.OutcomeFailed})
	m.IncrementSinkWrites()
	m.IncrementPagesFetched()

	m.ResetMetrics()

	snap := m.Snapshot()
	assert.Equal(t, int64(0), snap.RowsProcessed)
	assert.Equal(t, int64(0), snap.RowsFailed)
	assert.Equal(t, int64(0), snap.SinkWrites)
	assert.Equal(t, int64(0), snap.PagesFetched)
}

func TestEventSink(t *testing.T) {
	m := metrics.NewMetrics()
	sink := metrics.NewEventSink(m)
	ctx := context.Background()

	sink.OnEvent(ctx, extract.Event{
		Kind:      extract.EventCandidate,
		Candidate: &extract.Candidate{Value: "株式会社テスト", Method: extract.MethodTable},
	})
	sink.OnEvent(ctx, extract.Event{
		Kind:      extract.EventCandidate,
		Candidate: &extract.Candidate{Value: "株式会社テスト", Method: extract.MethodAI},
	})
	sink.OnEvent(ctx, extract.Event{Kind: extract.EventFetch, Note: "status 200"})
	sink.OnEvent(ctx, extract.Event{Kind: extract.EventFetch, Err: "connection refused"})
	sink.OnEvent(ctx, extract.Event{Kind: extract.EventFault, Err: "panic: boom"})

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.CandidatesProduced)
	assert.Equal(t, int64(1), snap.AISuggestions)
	assert.Equal(t, int64(1), snap.PagesFetched, "failed fetches should not count")
	assert.Equal(t, int64(1), snap.Faults)
}

func TestObserveRowConcurrently(t *testing.T) {
	m := metrics.NewMetrics()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ObserveRow(&store.Record{Outcome: store.OutcomeOK})
			m.IncrementSinkWrites()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(50), snap.RowsProcessed)
	assert.Equal(t, int64(50), snap.SinkWrites)
}
