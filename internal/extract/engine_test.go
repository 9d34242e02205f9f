package extract_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/fetch"
)

// stubFetcher serves auxiliary pages from a fixture map.
type stubFetcher struct {
	pages map[string]*fetch.Page
	errs  map[string]error

	mu    sync.Mutex
	calls []string
}

func (f *stubFetcher) FetchPage(_ context.Context, rawURL string) (*fetch.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	f.mu.Unlock()

	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	if page, ok := f.pages[rawURL]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("no fixture for %s", rawURL)
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingSink captures the event stream for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []extract.Event
}

func (s *recordingSink) OnEvent(_ context.Context, event extract.Event) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *recordingSink) all() []extract.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]extract.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) kinds() []extract.EventKind {
	var out []extract.EventKind
	for _, e := range s.all() {
		out = append(out, e.Kind)
	}
	return out
}

func (s *recordingSink) phasesStarted() []string {
	var out []string
	for _, e := range s.all() {
		if e.Kind == extract.EventPhaseStart {
			out = append(out, e.Phase)
		}
	}
	return out
}

// stubAI returns a fixed suggestion.
type stubAI struct {
	suggestion *extract.AISuggestion
	err        error

	mu        sync.Mutex
	calls     int
	lastField extract.FieldSpec
}

func (a *stubAI) Extract(_ context.Context, _ string, field extract.FieldSpec) (*extract.AISuggestion, error) {
	a.mu.Lock()
	a.calls++
	a.lastField = field
	a.mu.Unlock()

	if a.err != nil {
		return nil, a.err
	}
	return a.suggestion, nil
}

func (a *stubAI) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// latin1Mangle reinterprets the UTF-8 bytes of s as Latin-1 codepoints,
// reproducing the classic corruption of a mislabeled page.
func latin1Mangle(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		b.WriteRune(rune(c))
	}
	return b.String()
}

// ---------- pipeline scenario tests ----------

func TestExtract_StructuralExitSkipsLaterPhases(t *testing.T) {
	t.Parallel()

	html := `<html>
		<head><title>会社概要｜株式会社ヤマダ製作所</title></head>
		<body>
			<dl>
				<dt>会社名</dt><dd>株式会社ヤマダ製作所</dd>
				<dt>設立</dt><dd>1998年4月</dd>
			</dl>
			<a href="/company/">会社概要</a>
		</body>
	</html>`

	fetcher := &stubFetcher{}
	sink := &recordingSink{}
	engine := extract.New(extract.Config{}, fetcher, nil, sink, nil)

	got := engine.Extract(context.Background(), html, "https://example.co.jp/")
	if got.Value != "株式会社ヤマダ製作所" || got.Method != extract.MethodDefinitionList {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !almostEqual(got.Confidence, 0.99) {
		t.Fatalf("got confidence %v, want 0.99", got.Confidence)
	}
	if fetcher.callCount() != 0 {
		t.Fatalf("auxiliary pages must not be fetched after a structural exit, fetched %v", fetcher.calls)
	}

	started := sink.phasesStarted()
	want := []string{extract.PhaseMetadata, extract.PhaseCurrentPage}
	if len(started) != len(want) || started[0] != want[0] || started[1] != want[1] {
		t.Fatalf("phases started = %v, want %v", started, want)
	}
}

// A labeled structure ends the pipeline even when its value carries no
// legal marker; the selector completes the marker afterwards instead of
// the engine fetching auxiliary pages.
func TestExtract_UnmarkedStructuralExitSkipsAux(t *testing.T) {
	t.Parallel()

	html := `<html>
		<body>
			<dl>
				<dt>会社名</dt><dd>ヤマダ製作所</dd>
			</dl>
			<a href="/company/">会社概要</a>
		</body>
	</html>`

	fetcher := &stubFetcher{}
	engine := extract.New(extract.Config{}, fetcher, nil, nil, nil)

	got := engine.Extract(context.Background(), html, "https://example.co.jp/")
	if got.Value != "株式会社ヤマダ製作所" {
		t.Fatalf("got value %q, want auto-completed 株式会社ヤマダ製作所", got.Value)
	}
	if !got.IsAutoCompleted {
		t.Fatal("expected the selector to mark the value auto-completed")
	}
	if !almostEqual(got.Confidence, 0.82) {
		t.Fatalf("got confidence %v, want the 0.82 completion cap", got.Confidence)
	}
	if fetcher.callCount() != 0 {
		t.Fatalf("auxiliary pages must not be fetched after a structural exit, fetched %v", fetcher.calls)
	}
}

func TestExtract_StructuredDataShortCircuit(t *testing.T) {
	t.Parallel()

	html := `<html>
		<head>
			<script type="application/ld+json">{"@type":"Organization","name":"株式会社グリーンテック"}</script>
			<meta property="og:site_name" content="グリーンテック採用サイト">
		</head>
		<body>
			<dl><dt>会社名</dt><dd>株式会社ダミー商事</dd></dl>
		</body>
	</html>`

	sink := &recordingSink{}
	engine := extract.New(extract.Config{}, nil, nil, sink, nil)

	got := engine.Extract(context.Background(), html, "https://example.co.jp/")
	if got.Value != "株式会社グリーンテック" || got.Method != extract.MethodStructuredData {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Source != extract.SourceStructuredMetadata || !almostEqual(got.Confidence, 0.96) {
		t.Fatalf("unexpected provenance: %+v", got)
	}
	if got.IsAutoCompleted {
		t.Fatal("a short-circuited candidate must be returned unmodified")
	}

	// The definition list never ran: only metadata candidates are audited.
	for _, c := range got.Candidates {
		if c.Method == extract.MethodDefinitionList {
			t.Fatalf("current_page phase must not run after a short-circuit, audit: %+v", got.Candidates)
		}
	}
	if len(got.Candidates) != 2 {
		t.Fatalf("expected both metadata candidates in the audit, got %+v", got.Candidates)
	}

	started := sink.phasesStarted()
	if len(started) != 1 || started[0] != extract.PhaseMetadata {
		t.Fatalf("phases started = %v, want only metadata", started)
	}
}

func TestExtract_MojibakeRepaired(t *testing.T) {
	t.Parallel()

	mangled := latin1Mangle("株式会社ミドリ電化｜公式サイト")
	html := "<html><body><h1>" + mangled + "</h1></body></html>"

	got := newRuleEngine().Extract(context.Background(), html, "https://example.co.jp/")
	if got.Value != "株式会社ミドリ電化" {
		t.Fatalf("expected mojibake to be repaired before extraction, got %+v", got)
	}
	if got.Method != extract.MethodHeadingSplit {
		t.Fatalf("got method %q, want heading_split", got.Method)
	}
}

func TestExtract_EmptyPageYieldsNullResult(t *testing.T) {
	t.Parallel()

	got := newRuleEngine().Extract(context.Background(), "<html><body><p>準備中</p></body></html>", "https://example.co.jp/")
	if got == nil {
		t.Fatal("Extract must never return nil")
	}
	if got.Value != "" || got.Source != "" || got.Method != "" {
		t.Fatalf("expected null fields, got %+v", got)
	}
	if got.Confidence != 0 || got.Candidates == nil || len(got.Candidates) != 0 {
		t.Fatalf("expected zero confidence and an empty audit, got %+v", got)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordingSink{}
	engine := extract.New(extract.Config{}, nil, nil, sink, nil)

	got := engine.Extract(ctx, `<html><body><dl><dt>会社名</dt><dd>株式会社アオバ</dd></dl></body></html>`, "https://example.co.jp/")
	if got.Value != "" || len(got.Candidates) != 0 {
		t.Fatalf("expected best-effort null result, got %+v", got)
	}

	events := sink.all()
	if len(events) != 1 || events[0].Kind != extract.EventEarlyExit {
		t.Fatalf("expected a single early-exit event, got %+v", events)
	}
	if events[0].Note != "context canceled" || events[0].Phase != extract.PhaseMetadata {
		t.Fatalf("unexpected early-exit event: %+v", events[0])
	}
}

func TestExtract_EventOrdering(t *testing.T) {
	t.Parallel()

	html := `<html><body><dl><dt>会社名</dt><dd>株式会社アオバ</dd></dl></body></html>`

	sink := &recordingSink{}
	engine := extract.New(extract.Config{}, nil, nil, sink, nil)
	engine.Extract(context.Background(), html, "https://example.co.jp/")

	want := []extract.EventKind{
		extract.EventPhaseStart, // metadata
		extract.EventPhaseEnd,
		extract.EventPhaseStart, // current_page
		extract.EventCandidate,
		extract.EventPhaseEnd,
		extract.EventEarlyExit,
		extract.EventSelected,
	}
	got := sink.kinds()
	if len(got) != len(want) {
		t.Fatalf("event kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %q, want %q (full stream %v)", i, got[i], want[i], got)
		}
	}

	for _, e := range sink.all() {
		if e.Time.IsZero() {
			t.Fatalf("event missing timestamp: %+v", e)
		}
	}
}
