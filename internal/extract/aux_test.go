package extract_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/fetch"
)

// ---------- link discovery tests ----------

func discoverLinks(t *testing.T, cfg extract.Config, html, pageURL string) []string {
	t.Helper()

	base, err := url.Parse(pageURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	engine := extract.New(cfg, &stubFetcher{}, nil, nil, nil)
	return extract.DiscoverAuxLinks(engine, parseDoc(t, html), base, pageURL)
}

func TestDiscoverAuxLinks_HrefAndTextHints(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="/company/">企業情報</a>
		<a href="/about.html">About</a>
		<a href="/corp/">会社概要</a>
		<a href="/news/">ニュース</a>
	</body>`

	got := discoverLinks(t, extract.Config{}, html, "https://example.co.jp/")
	want := []string{
		"https://example.co.jp/company",
		"https://example.co.jp/about.html",
		"https://example.co.jp/corp",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("link %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscoverAuxLinks_FiltersUnusableTargets(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="https://other.example.com/company/">会社概要</a>
		<a href="mailto:info@example.co.jp">インフォメーション</a>
		<a href="#about">会社情報</a>
		<a href="/company/">会社概要</a>
		<a href="/company">会社概要（重複）</a>
	</body>`

	got := discoverLinks(t, extract.Config{}, html, "https://example.co.jp/")
	if len(got) != 1 || got[0] != "https://example.co.jp/company" {
		t.Fatalf("expected only the deduplicated same-host link, got %v", got)
	}
}

func TestDiscoverAuxLinks_SkipsSelfReference(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="/">会社情報</a>
		<a href="/company/">会社概要</a>
	</body>`

	got := discoverLinks(t, extract.Config{}, html, "https://example.co.jp/")
	if len(got) != 1 || got[0] != "https://example.co.jp/company" {
		t.Fatalf("expected the page itself to be skipped, got %v", got)
	}
}

func TestDiscoverAuxLinks_CommonPathsWhenNoHints(t *testing.T) {
	t.Parallel()

	html := `<body><a href="/news/">ニュース</a></body>`

	got := discoverLinks(t, extract.Config{}, html, "https://example.co.jp/")
	if len(got) != 7 {
		t.Fatalf("expected the deduplicated well-known paths, got %v", got)
	}
	if got[0] != "https://example.co.jp/company" || got[len(got)-1] != "https://example.co.jp/kaisya.html" {
		t.Fatalf("unexpected path order: %v", got)
	}
}

func TestDiscoverAuxLinks_CapsAtMaxAuxPages(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="/company/">a</a>
		<a href="/company/info.html">b</a>
		<a href="/company/outline.html">c</a>
		<a href="/about/">d</a>
		<a href="/profile/">e</a>
	</body>`

	got := discoverLinks(t, extract.Config{MaxAuxPages: 3}, html, "https://example.co.jp/")
	if len(got) != 3 {
		t.Fatalf("expected the cap to apply, got %v", got)
	}
}

// ---------- auxiliary phase tests ----------

func TestExtract_AuxPageProvidesStructure(t *testing.T) {
	t.Parallel()

	mainHTML := `<html><body>
		<p>ようこそ</p>
		<a href="/company/">会社概要</a>
	</body></html>`
	auxHTML := `<html><body>
		<table><tr><th>会社名</th><td>株式会社アオゾラ</td></tr></table>
	</body></html>`

	fetcher := &stubFetcher{pages: map[string]*fetch.Page{
		"https://example.co.jp/company": {Content: auxHTML, StatusCode: 200, FinalURL: "https://example.co.jp/company"},
	}}
	sink := &recordingSink{}
	engine := extract.New(extract.Config{}, fetcher, nil, sink, nil)

	got := engine.Extract(context.Background(), mainHTML, "https://example.co.jp/")
	if got.Value != "株式会社アオゾラ" || got.Method != extract.MethodTable {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Source != "aux:table" {
		t.Fatalf("got source %q, want aux:table", got.Source)
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("expected one fetch, got %v", fetcher.calls)
	}

	// A near-certain auxiliary hit ends the pipeline.
	for _, phase := range sink.phasesStarted() {
		if phase == extract.PhaseMarker || phase == extract.PhaseHeading {
			t.Fatalf("expected later phases to be skipped, started %v", sink.phasesStarted())
		}
	}
}

func TestExtract_AuxFetchErrorContinues(t *testing.T) {
	t.Parallel()

	mainHTML := `<html><body>
		<a href="/company/">会社概要</a>
		<a href="/about/">会社情報</a>
	</body></html>`
	auxHTML := `<html><body>
		<dl><dt>会社名</dt><dd>株式会社アオゾラ</dd></dl>
	</body></html>`

	fetcher := &stubFetcher{
		errs: map[string]error{
			"https://example.co.jp/company": errors.New("connection refused"),
		},
		pages: map[string]*fetch.Page{
			"https://example.co.jp/about": {Content: auxHTML, StatusCode: 200, FinalURL: "https://example.co.jp/about"},
		},
	}
	sink := &recordingSink{}
	engine := extract.New(extract.Config{}, fetcher, nil, sink, nil)

	got := engine.Extract(context.Background(), mainHTML, "https://example.co.jp/")
	if got.Value != "株式会社アオゾラ" || got.Source != "aux:definition-list" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if fetcher.callCount() != 2 {
		t.Fatalf("expected both links to be tried, got %v", fetcher.calls)
	}

	var sawFailedFetch bool
	for _, e := range sink.all() {
		if e.Kind == extract.EventFetch && e.Err != "" {
			sawFailedFetch = true
		}
	}
	if !sawFailedFetch {
		t.Fatal("expected the failed fetch to be recorded in the event stream")
	}
}

func TestExtract_NoFetcherSkipsAuxPhase(t *testing.T) {
	t.Parallel()

	mainHTML := `<html><body><a href="/company/">会社概要</a></body></html>`

	got := newRuleEngine().Extract(context.Background(), mainHTML, "https://example.co.jp/")
	if got.Value != "" {
		t.Fatalf("expected null result without a fetcher, got %+v", got)
	}
}
