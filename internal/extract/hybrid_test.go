package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jonesrussell/shogo/internal/extract"
)

const (
	fallbackPage = "<html><body><h1>ミカヅキ印刷</h1></body></html>"
	emptyPage    = "<html><body><p>ようこそ</p></body></html>"
	dlPage       = `<html><body><dl><dt>会社名</dt><dd>株式会社アオバ</dd></dl></body></html>`
)

func newHybridEngine(mode string, ai extract.AIExtractor, sink extract.Sink) *extract.Engine {
	return extract.New(extract.Config{Mode: mode}, nil, ai, sink, nil)
}

// ---------- invocation gate tests ----------

func TestMergeAI_RuleOnlyNeverCallsModel(t *testing.T) {
	t.Parallel()

	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社カグヤ", Confidence: 0.95}}
	engine := newHybridEngine(extract.ModeRuleOnly, ai, nil)

	got := engine.Extract(context.Background(), emptyPage, "https://example.co.jp/")
	if got.Value != "" {
		t.Fatalf("expected null rule result, got %+v", got)
	}
	if ai.callCount() != 0 {
		t.Fatal("rule_only mode must not call the model")
	}
}

func TestMergeAI_HybridSkipsConfidentRule(t *testing.T) {
	t.Parallel()

	html := "<html><body><h1>株式会社ホシカワ　安心と信頼の総合警備</h1></body></html>"
	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社ニセモノ", Confidence: 0.99}}
	engine := newHybridEngine(extract.ModeHybrid, ai, nil)

	got := engine.Extract(context.Background(), html, "https://example.co.jp/")
	if got.Value != "株式会社ホシカワ" || got.Method != extract.MethodHeadingSplit {
		t.Fatalf("expected the rule result to be kept, got %+v", got)
	}
	// 0.95 sits above the default threshold, so the model is never asked.
	if ai.callCount() != 0 {
		t.Fatal("hybrid mode must not consult the model above the threshold")
	}
	if len(got.Candidates) != 1 {
		t.Fatalf("audit must hold only the rule candidate, got %+v", got.Candidates)
	}
}

func TestMergeAI_HybridPreservesMetaTagResult(t *testing.T) {
	t.Parallel()

	html := `<html><head><meta property="og:site_name" content="株式会社シラカバ"></head><body></body></html>`
	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社ニセモノ", Confidence: 0.99}}
	engine := newHybridEngine(extract.ModeHybrid, ai, nil)

	got := engine.Extract(context.Background(), html, "https://example.co.jp/")
	if got.Value != "株式会社シラカバ" || got.Method != extract.MethodMetaTag {
		t.Fatalf("expected the meta tag result to be kept, got %+v", got)
	}
	if ai.callCount() != 0 {
		t.Fatal("hybrid mode must not consult the model for confident results")
	}
}

func TestMergeAI_CustomThreshold(t *testing.T) {
	t.Parallel()

	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社カグヤ", Confidence: 0.99}}
	engine := extract.New(extract.Config{Mode: extract.ModeHybrid, AIThreshold: 0.71}, nil, ai, nil, nil)

	got := engine.Extract(context.Background(), fallbackPage, "https://example.co.jp/")
	if got.Method != extract.MethodHeadingFallback {
		t.Fatalf("expected the rule result to be kept, got %+v", got)
	}
	// The fallback's 0.72 clears the lowered threshold, so no model call.
	if ai.callCount() != 0 {
		t.Fatal("expected the configured threshold to suppress the model call")
	}
}

func TestMergeAI_MetadataShortCircuitSkipsModel(t *testing.T) {
	t.Parallel()

	html := `<html><head><script type="application/ld+json">
{"@type":"Organization","name":"株式会社タンポポ"}
</script></head><body></body></html>`
	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社ニセモノ", Confidence: 0.99}}
	engine := newHybridEngine(extract.ModeAIFirst, ai, nil)

	got := engine.Extract(context.Background(), html, "https://example.co.jp/")
	if got.Value != "株式会社タンポポ" || got.Method != extract.MethodStructuredData {
		t.Fatalf("expected the metadata short-circuit result, got %+v", got)
	}
	if ai.callCount() != 0 {
		t.Fatal("a metadata short-circuit must return before the merge layer")
	}
}

// ---------- merge policy tests ----------

func TestMergeAI_FillsNullResult(t *testing.T) {
	t.Parallel()

	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社カグヤ", Confidence: 0.90}}
	sink := &recordingSink{}
	engine := newHybridEngine(extract.ModeHybrid, ai, sink)

	got := engine.Extract(context.Background(), emptyPage, "https://example.co.jp/")
	if got.Value != "株式会社カグヤ" || got.Method != extract.MethodAI {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Source != extract.SourceAI || !almostEqual(got.Confidence, 0.90) {
		t.Fatalf("unexpected provenance: %+v", got)
	}
	if len(got.Candidates) != 1 || got.Candidates[0].Method != extract.MethodAI {
		t.Fatalf("expected the suggestion in the audit, got %+v", got.Candidates)
	}
	if ai.lastField.Name != "company_name" {
		t.Fatalf("unexpected field spec: %+v", ai.lastField)
	}
}

func TestMergeAI_HybridReplacesWeakerHeuristic(t *testing.T) {
	t.Parallel()

	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社ミカヅキ印刷工房", Confidence: 0.90}}
	engine := newHybridEngine(extract.ModeHybrid, ai, nil)

	got := engine.Extract(context.Background(), fallbackPage, "https://example.co.jp/")
	if got.Value != "株式会社ミカヅキ印刷工房" || got.Method != extract.MethodAI {
		t.Fatalf("expected the stronger suggestion to win, got %+v", got)
	}
	if len(got.Candidates) != 2 {
		t.Fatalf("expected rule and AI candidates in the audit, got %+v", got.Candidates)
	}
}

func TestMergeAI_WeakerSuggestionAudited(t *testing.T) {
	t.Parallel()

	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社ニセモノ", Confidence: 0.60}}
	engine := newHybridEngine(extract.ModeHybrid, ai, nil)

	got := engine.Extract(context.Background(), fallbackPage, "https://example.co.jp/")
	if got.Method != extract.MethodHeadingFallback {
		t.Fatalf("expected the weaker suggestion to be rejected, got %+v", got)
	}
	// The rejected suggestion still lands in the audit trail.
	if len(got.Candidates) != 2 {
		t.Fatalf("expected the suggestion to be audited, got %+v", got.Candidates)
	}
	last := got.Candidates[len(got.Candidates)-1]
	if last.Method != extract.MethodAI || last.Value != "株式会社ニセモノ" {
		t.Fatalf("unexpected audited suggestion: %+v", last)
	}
}

func TestMergeAI_StructuralResultNeverOverridden(t *testing.T) {
	t.Parallel()

	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社ニセモノ", Confidence: 0.99}}
	engine := newHybridEngine(extract.ModeAIFirst, ai, nil)

	got := engine.Extract(context.Background(), dlPage, "https://example.co.jp/")
	if got.Value != "株式会社アオバ" || got.Method != extract.MethodDefinitionList {
		t.Fatalf("expected the structural result to stand, got %+v", got)
	}
	// ai_first always asks the model; the answer is audited, never adopted.
	if ai.callCount() != 1 {
		t.Fatalf("expected exactly one model call, got %d", ai.callCount())
	}
	last := got.Candidates[len(got.Candidates)-1]
	if last.Method != extract.MethodAI {
		t.Fatalf("expected the suggestion at the audit tail, got %+v", got.Candidates)
	}
}

func TestMergeAI_AIFirstOverridesHeuristic(t *testing.T) {
	t.Parallel()

	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "株式会社ミカヅキ印刷工房", Confidence: 0.76}}
	engine := newHybridEngine(extract.ModeAIFirst, ai, nil)

	got := engine.Extract(context.Background(), fallbackPage, "https://example.co.jp/")
	if got.Method != extract.MethodAI || got.Value != "株式会社ミカヅキ印刷工房" {
		t.Fatalf("expected the model to win over the fallback, got %+v", got)
	}
}

// ---------- suggestion screening tests ----------

func TestMergeAI_ErrorKeepsRuleResult(t *testing.T) {
	t.Parallel()

	ai := &stubAI{err: errors.New("model unavailable")}
	sink := &recordingSink{}
	engine := newHybridEngine(extract.ModeHybrid, ai, sink)

	got := engine.Extract(context.Background(), fallbackPage, "https://example.co.jp/")
	if got.Method != extract.MethodHeadingFallback {
		t.Fatalf("expected the rule result to survive the failure, got %+v", got)
	}

	var sawFault bool
	for _, e := range sink.all() {
		if e.Kind == extract.EventFault && e.Phase == "ai" {
			sawFault = true
		}
	}
	if !sawFault {
		t.Fatal("expected the failure to be recorded in the event stream")
	}
}

func TestMergeAI_InvalidSuggestionRejected(t *testing.T) {
	t.Parallel()

	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "2020年4月", Confidence: 0.95}}
	engine := newHybridEngine(extract.ModeHybrid, ai, nil)

	got := engine.Extract(context.Background(), emptyPage, "https://example.co.jp/")
	if got.Value != "" {
		t.Fatalf("expected date-like suggestion to be rejected, got %+v", got)
	}
	if len(got.Candidates) != 0 {
		t.Fatalf("a rejected suggestion must not be audited, got %+v", got.Candidates)
	}
}

func TestMergeAI_SuggestionCompletedFromPageText(t *testing.T) {
	t.Parallel()

	html := "<html><body><p>ようこそ、ナナクサ株式会社のサイトへ。</p></body></html>"
	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "ナナクサ", Confidence: 0.88}}
	engine := newHybridEngine(extract.ModeHybrid, ai, nil)

	got := engine.Extract(context.Background(), html, "https://example.co.jp/")
	if got.Value != "ナナクサ株式会社" || got.Method != extract.MethodAI {
		t.Fatalf("expected the page's marker form to be adopted, got %+v", got)
	}
	if !got.IsAutoCompleted || !almostEqual(got.Confidence, 0.88) {
		t.Fatalf("adjacent completion must keep model confidence, got %+v", got)
	}
}

func TestMergeAI_SuggestionCompletedWithDefault(t *testing.T) {
	t.Parallel()

	ai := &stubAI{suggestion: &extract.AISuggestion{Value: "カグヤ工務店", Confidence: 0.90}}
	engine := newHybridEngine(extract.ModeHybrid, ai, nil)

	got := engine.Extract(context.Background(), emptyPage, "https://example.co.jp/")
	if got.Value != "株式会社カグヤ工務店" || !got.IsAutoCompleted {
		t.Fatalf("expected default marker completion, got %+v", got)
	}
	if !almostEqual(got.Confidence, 0.82) {
		t.Fatalf("inferred completion must cap confidence, got %v", got.Confidence)
	}
}
