package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

type captureSink struct {
	events []Event
}

func (s *captureSink) OnEvent(_ context.Context, event Event) {
	s.events = append(s.events, event)
}

func TestRunPhaseRecoversPanic(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	e := New(Config{}, nil, nil, sink, nil)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatal(err)
	}

	ph := phase{
		name: "boom",
		run: func(context.Context, *goquery.Document, string) phaseResult {
			panic("kaboom")
		},
	}

	res := e.runPhase(context.Background(), ph, doc, "https://example.co.jp/")
	if res.exit || res.direct != nil || len(res.candidates) != 0 {
		t.Fatalf("expected a zero phase result after a panic, got %+v", res)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected exactly one fault event, got %d", len(sink.events))
	}
	event := sink.events[0]
	if event.Kind != EventFault || event.Phase != "boom" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if !strings.Contains(event.Err, "kaboom") {
		t.Fatalf("fault event should carry the panic value, got %q", event.Err)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	e := New(Config{}, nil, nil, nil, nil)
	if e.cfg.MaxAuxPages != DefaultMaxAuxPages {
		t.Fatalf("got MaxAuxPages %d, want %d", e.cfg.MaxAuxPages, DefaultMaxAuxPages)
	}
	if e.cfg.Mode != ModeRuleOnly {
		t.Fatalf("got mode %q, want %q", e.cfg.Mode, ModeRuleOnly)
	}
	if e.cfg.AIThreshold != defaultAIThreshold {
		t.Fatalf("got threshold %v, want %v", e.cfg.AIThreshold, defaultAIThreshold)
	}
	if e.sink == nil || e.log == nil {
		t.Fatal("sink and log must be non-nil after construction")
	}
}

func TestNewKeepsExplicitConfig(t *testing.T) {
	t.Parallel()

	e := New(Config{MaxAuxPages: 3, Mode: ModeHybrid, AIThreshold: 0.9}, nil, nil, nil, nil)
	if e.cfg.MaxAuxPages != 3 || e.cfg.Mode != ModeHybrid || e.cfg.AIThreshold != 0.9 {
		t.Fatalf("explicit configuration was altered: %+v", e.cfg)
	}
}
