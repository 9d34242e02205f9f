package extract_test

import (
	"context"
	"testing"

	"github.com/jonesrussell/shogo/internal/extract"
)

// ---------- event bus tests ----------

func TestBusFanOut(t *testing.T) {
	t.Parallel()

	bus := extract.NewBus()
	first := &recordingSink{}
	second := &recordingSink{}
	bus.Subscribe(first)
	bus.Subscribe(nil)
	bus.Subscribe(second)

	bus.OnEvent(context.Background(), extract.Event{Kind: extract.EventPhaseStart, Phase: "metadata"})
	bus.OnEvent(context.Background(), extract.Event{Kind: extract.EventPhaseEnd, Phase: "metadata"})

	for _, sink := range []*recordingSink{first, second} {
		events := sink.all()
		if len(events) != 2 {
			t.Fatalf("expected both events delivered, got %d", len(events))
		}
		if events[0].Kind != extract.EventPhaseStart || events[1].Kind != extract.EventPhaseEnd {
			t.Fatalf("events delivered out of order: %+v", events)
		}
	}
}

func TestBusAsEngineSink(t *testing.T) {
	t.Parallel()

	bus := extract.NewBus()
	sink := &recordingSink{}
	bus.Subscribe(sink)

	engine := extract.New(extract.Config{}, nil, nil, bus, nil)
	engine.Extract(context.Background(), emptyPage, "https://example.co.jp/")

	if len(sink.all()) == 0 {
		t.Fatal("expected pipeline events to reach the subscribed sink")
	}
}
