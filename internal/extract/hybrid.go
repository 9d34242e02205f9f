package extract

import (
	"context"

	"github.com/jonesrussell/shogo/internal/jptext"
)

// Merge modes for AI suggestions.
const (
	ModeRuleOnly = "rule_only"
	ModeHybrid   = "hybrid"
	ModeAIFirst  = "ai_first"
)

// defaultAIThreshold is the rule confidence below which hybrid mode
// consults the model.
const defaultAIThreshold = 0.75

// companyNameField tells the model what to look for.
var companyNameField = FieldSpec{
	Name:        "company_name",
	Description: "このページを運営している会社・法人の正式名称。法人格（株式会社など）を含む完全な形が望ましい。",
	Examples:    []string{"株式会社サンプル", "有限会社田中工務店", "弁護士法人みなと総合法律事務所"},
}

// mergeAI reconciles the rule-based result with a model suggestion. In
// hybrid mode the model is consulted only when the rules produced nothing
// or a result below the configured threshold; in ai_first mode it is
// always consulted. Acceptance is the same in every mode: a structural
// rule result stands irrespective of model confidence, a null result is
// filled, and a heuristic-only result is displaced when the model reports
// higher confidence. A failed or rejected suggestion degrades to the rule
// result; a screened suggestion always joins the audit trail.
func (e *Engine) mergeAI(ctx context.Context, rule *Result, html, pageText, pageURL string) *Result {
	if e.ai == nil || e.cfg.Mode == ModeRuleOnly {
		return rule
	}
	if e.cfg.Mode == ModeHybrid && rule.Value != "" && rule.Confidence >= e.cfg.AIThreshold {
		return rule
	}

	suggestion, err := e.ai.Extract(ctx, html, companyNameField)
	if err != nil {
		e.emit(ctx, Event{Kind: EventFault, URL: pageURL, Phase: "ai", Err: err.Error()})
		e.log.Warn("ai extraction failed, keeping rule result", "url", pageURL, "error", err.Error())
		return rule
	}
	if suggestion == nil || suggestion.Value == "" {
		return rule
	}

	value := jptext.NormalizeSpace(jptext.Normalize(suggestion.Value))
	if !acceptableValue(value) {
		return rule
	}

	// A suggestion without a legal marker is completed against the page
	// text exactly like a rule winner.
	aiCand := autoComplete(Candidate{
		Value:          value,
		SourceContext:  SourceAI,
		Confidence:     suggestion.Confidence,
		Method:         MethodAI,
		HasLegalMarker: hasLegalMarker(value),
	}, pageText)
	e.emit(ctx, Event{Kind: EventCandidate, URL: pageURL, Phase: "ai", Candidate: &aiCand})
	audit := append(rule.Candidates, aiCand)

	adopt := rule.Value == "" ||
		(rule.Method.IsHeuristicOnly() && suggestion.Confidence > rule.Confidence)
	if !adopt {
		rule.Candidates = audit
		return rule
	}

	e.emit(ctx, Event{Kind: EventSelected, URL: pageURL, Phase: "ai", Candidate: &aiCand})
	return resultFromCandidate(aiCand, audit)
}
