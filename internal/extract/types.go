// Package extract implements the multi-phase heuristic engine that pulls a
// company's legal entity name out of arbitrary, often malformed, HTML. The
// engine runs ordered structural phases over the page, accumulates typed
// candidates, and resolves them to a single best answer with a full audit
// trail.
package extract

import "encoding/json"

// Method identifies the extraction strategy that produced a candidate.
type Method string

// Extraction methods, ordered roughly by trust.
const (
	// MethodStructuredData is embedded organization markup (JSON-LD).
	MethodStructuredData Method = "structured_data"
	// MethodMetaTag is an og:site_name / og:title meta tag.
	MethodMetaTag Method = "meta_tag"
	// MethodDefinitionList is a labeled dl/dt/dd row.
	MethodDefinitionList Method = "definition_list"
	// MethodTable is a labeled table row.
	MethodTable Method = "table"
	// MethodList is a labeled ul/li row.
	MethodList Method = "list"
	// MethodMarkerLabel is a glyph-marker block (■ + known label).
	MethodMarkerLabel Method = "marker_label"
	// MethodTextPattern is a "label: value" match in visible text.
	MethodTextPattern Method = "text_pattern"
	// MethodHeadingSplit is a heading cut at a smart delimiter.
	MethodHeadingSplit Method = "heading_split"
	// MethodHeadingKeyword is a heading matched by business keyword.
	MethodHeadingKeyword Method = "heading_keyword"
	// MethodTitleKeyword is a page title matched by business keyword.
	MethodTitleKeyword Method = "title_keyword"
	// MethodHeadingFallback is a cleaned first heading with no other signal.
	MethodHeadingFallback Method = "heading_fallback"
	// MethodIntroduction is an introduction-pattern heading.
	MethodIntroduction Method = "introduction"
	// MethodAI is a value accepted from the AI capability during merge.
	MethodAI Method = "ai"
)

// IsStructural reports whether the method reads a labeled page structure.
// Structural matches outrank every heuristic during selection and merge.
func (m Method) IsStructural() bool {
	switch m {
	case MethodDefinitionList, MethodTable, MethodList, MethodMarkerLabel:
		return true
	}
	return false
}

// IsBusinessKeyword reports whether the method matched on a business
// keyword rather than a labeled structure.
func (m Method) IsBusinessKeyword() bool {
	return m == MethodHeadingKeyword || m == MethodTitleKeyword
}

// IsHeuristicOnly reports whether the method is a heading/title/introduction
// guess. Only these may be displaced by an AI suggestion.
func (m Method) IsHeuristicOnly() bool {
	switch m {
	case MethodHeadingSplit, MethodHeadingKeyword, MethodTitleKeyword,
		MethodHeadingFallback, MethodIntroduction:
		return true
	}
	return false
}

// Source context tags attached to candidates.
const (
	SourceStructuredMetadata = "structured-metadata"
	SourceMetaTag            = "meta-tag"
	SourceDefinitionList     = "definition-list"
	SourceTable              = "table"
	SourceList               = "list"
	SourceMarker             = "marker"
	SourceTextPattern        = "text-pattern"
	SourceHeading            = "heading"
	SourceTitle              = "title"
	SourceIntroduction       = "introduction"
	SourceAI                 = "ai"

	// auxSourcePrefix marks candidates harvested from an auxiliary page.
	auxSourcePrefix = "aux:"
)

// Candidate is one proposed extraction value with provenance and
// confidence, before final selection. Candidates are owned by a single
// engine invocation and never persisted across calls.
type Candidate struct {
	Value           string  `json:"value"`
	SourceContext   string  `json:"source_context"`
	Confidence      float64 `json:"confidence"`
	Method          Method  `json:"method"`
	HasLegalMarker  bool    `json:"has_legal_marker"`
	IsAutoCompleted bool    `json:"is_auto_completed"`
}

// Result is the engine's answer for one page: the selected value plus the
// full candidate audit trail, which retains every raw candidate produced
// across all phases including values later discarded by deduplication.
type Result struct {
	Value           string
	Source          string
	Confidence      float64
	Method          Method
	IsAutoCompleted bool
	Candidates      []Candidate
}

// resultJSON is the stable wire shape. Empty value/source/method marshal as
// JSON null, never as empty strings; consumers depend on that exactly.
type resultJSON struct {
	Value           *string     `json:"value"`
	Source          *string     `json:"source"`
	Confidence      float64     `json:"confidence"`
	Method          *string     `json:"method"`
	IsAutoCompleted bool        `json:"is_auto_completed"`
	Candidates      []Candidate `json:"candidates"`
}

// MarshalJSON implements json.Marshaler preserving null semantics for the
// value, source, and method fields.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Confidence:      r.Confidence,
		IsAutoCompleted: r.IsAutoCompleted,
		Candidates:      r.Candidates,
	}
	if out.Candidates == nil {
		out.Candidates = []Candidate{}
	}
	if r.Value != "" {
		out.Value = &r.Value
	}
	if r.Source != "" {
		out.Source = &r.Source
	}
	if r.Method != "" {
		m := string(r.Method)
		out.Method = &m
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for the wire shape.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Result{
		Confidence:      in.Confidence,
		IsAutoCompleted: in.IsAutoCompleted,
		Candidates:      in.Candidates,
	}
	if in.Value != nil {
		r.Value = *in.Value
	}
	if in.Source != nil {
		r.Source = *in.Source
	}
	if in.Method != nil {
		r.Method = Method(*in.Method)
	}
	return nil
}

// emptyResult is the defined success outcome when no phase produced a
// candidate: a null value at zero confidence, not an error.
func emptyResult(audit []Candidate) *Result {
	if audit == nil {
		audit = []Candidate{}
	}
	return &Result{Confidence: 0, Candidates: audit}
}

// resultFromCandidate builds a result that mirrors one candidate exactly.
func resultFromCandidate(c Candidate, audit []Candidate) *Result {
	return &Result{
		Value:           c.Value,
		Source:          c.SourceContext,
		Confidence:      c.Confidence,
		Method:          c.Method,
		IsAutoCompleted: c.IsAutoCompleted,
		Candidates:      audit,
	}
}
