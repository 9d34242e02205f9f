package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/shogo/internal/fetch"
	"github.com/jonesrussell/shogo/internal/jptext"
	"github.com/jonesrussell/shogo/internal/logger"
)

// DefaultMaxAuxPages bounds how many candidate subpages the auxiliary
// phase will fetch for one extraction.
const DefaultMaxAuxPages = 15

// Pipeline phase names, in execution order.
const (
	PhaseMetadata     = "metadata"
	PhaseCurrentPage  = "current_page"
	PhaseAuxPages     = "aux_pages"
	PhaseMarker       = "marker"
	PhaseHeading      = "heading"
	PhaseIntroduction = "introduction"
)

// Fetcher retrieves auxiliary pages during extraction.
type Fetcher interface {
	FetchPage(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// AIExtractor proposes a field value from page content. Implementations
// wrap a language-model backend.
type AIExtractor interface {
	Extract(ctx context.Context, pageContent string, field FieldSpec) (*AISuggestion, error)
}

// FieldSpec describes the field an AIExtractor should look for.
type FieldSpec struct {
	Name        string
	Description string
	Examples    []string
}

// AISuggestion is a model-proposed value with the model's own confidence.
type AISuggestion struct {
	Value      string
	Confidence float64
	Reason     string
}

// Config controls pipeline behavior. Zero values select the defaults.
type Config struct {
	// MaxAuxPages caps auxiliary page fetches per extraction.
	MaxAuxPages int
	// Mode selects how AI suggestions are merged with rule results.
	Mode string
	// AIThreshold is the rule confidence below which hybrid mode consults
	// the model.
	AIThreshold float64
}

// Engine runs the multi-phase extraction pipeline over one page.
type Engine struct {
	cfg     Config
	fetcher Fetcher
	ai      AIExtractor
	sink    Sink
	log     logger.Interface
}

// New creates an Engine. fetcher and ai may be nil, which disables the
// auxiliary-page phase and AI merging respectively. A nil sink or log is
// replaced with a no-op.
func New(cfg Config, fetcher Fetcher, ai AIExtractor, sink Sink, log logger.Interface) *Engine {
	if cfg.MaxAuxPages <= 0 {
		cfg.MaxAuxPages = DefaultMaxAuxPages
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeRuleOnly
	}
	if cfg.AIThreshold <= 0 {
		cfg.AIThreshold = defaultAIThreshold
	}
	if sink == nil {
		sink = NopSink{}
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Engine{cfg: cfg, fetcher: fetcher, ai: ai, sink: sink, log: log}
}

type phaseResult struct {
	candidates []Candidate
	// exit stops the phase loop and hands the accumulated candidates to
	// the selector.
	exit bool
	// direct short-circuits everything: the candidate is returned as-is,
	// bypassing selection and auto-completion.
	direct *Candidate
}

type phase struct {
	name string
	run  func(ctx context.Context, doc *goquery.Document, pageURL string) phaseResult
}

// Extract runs all phases against the page and returns the extraction
// result. It never returns an error: faults are isolated per phase,
// recorded in the event stream, and reflected as a null result at worst.
func (e *Engine) Extract(ctx context.Context, html, pageURL string) *Result {
	start := time.Now()
	html = jptext.Normalize(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.emit(ctx, Event{Kind: EventFault, URL: pageURL, Err: err.Error(), Note: "parse"})
		return emptyResult(nil)
	}

	phases := []phase{
		{PhaseMetadata, e.runMetadataPhase},
		{PhaseCurrentPage, e.runCurrentPagePhase},
		{PhaseAuxPages, e.runAuxPagesPhase},
		{PhaseMarker, e.runMarkerPhase},
		{PhaseHeading, e.runHeadingPhase},
		{PhaseIntroduction, e.runIntroductionPhase},
	}

	audit := make([]Candidate, 0, 8)
	for _, ph := range phases {
		if ctx.Err() != nil {
			e.emit(ctx, Event{Kind: EventEarlyExit, URL: pageURL, Phase: ph.name, Note: "context canceled"})
			break
		}

		e.emit(ctx, Event{Kind: EventPhaseStart, URL: pageURL, Phase: ph.name})
		res := e.runPhase(ctx, ph, doc, pageURL)
		for i := range res.candidates {
			e.emit(ctx, Event{Kind: EventCandidate, URL: pageURL, Phase: ph.name, Candidate: &res.candidates[i]})
		}
		audit = append(audit, res.candidates...)
		e.emit(ctx, Event{
			Kind:  EventPhaseEnd,
			URL:   pageURL,
			Phase: ph.name,
			Note:  fmt.Sprintf("%d candidates", len(res.candidates)),
		})

		if res.direct != nil {
			e.emit(ctx, Event{Kind: EventEarlyExit, URL: pageURL, Phase: ph.name, Candidate: res.direct})
			e.log.Debug("metadata short-circuit",
				"url", pageURL,
				"value", res.direct.Value,
				"duration", time.Since(start).String(),
			)
			return resultFromCandidate(*res.direct, audit)
		}
		if res.exit {
			e.emit(ctx, Event{Kind: EventEarlyExit, URL: pageURL, Phase: ph.name})
			break
		}
	}

	pageText := doc.Text()
	result := e.selectResult(ctx, audit, pageText, pageURL)
	result = e.mergeAI(ctx, result, html, pageText, pageURL)

	e.log.Debug("extraction finished",
		"url", pageURL,
		"candidates", len(audit),
		"duration", time.Since(start).String(),
	)
	return result
}

// runPhase isolates a phase behind recover so a panic in one heuristic
// cannot take down the pipeline.
func (e *Engine) runPhase(ctx context.Context, ph phase, doc *goquery.Document, pageURL string) (res phaseResult) {
	defer func() {
		if r := recover(); r != nil {
			res = phaseResult{}
			e.emit(ctx, Event{
				Kind:  EventFault,
				URL:   pageURL,
				Phase: ph.name,
				Err:   fmt.Sprintf("panic: %v", r),
			})
			e.log.Error("phase panicked", "phase", ph.name, "url", pageURL, "panic", fmt.Sprintf("%v", r))
		}
	}()
	return ph.run(ctx, doc, pageURL)
}

// selectResult runs the selector over the accumulated candidates and
// builds the final result. Auto-completion reads the visible page text to
// verify adjacent marker forms and marker frequency.
func (e *Engine) selectResult(ctx context.Context, audit []Candidate, pageText, pageURL string) *Result {
	winner := selectBest(audit, pageText)
	if winner == nil {
		return emptyResult(audit)
	}
	e.emit(ctx, Event{Kind: EventSelected, URL: pageURL, Candidate: winner})
	return resultFromCandidate(*winner, audit)
}

func (e *Engine) emit(ctx context.Context, event Event) {
	event.Time = time.Now()
	e.sink.OnEvent(ctx, event)
}
