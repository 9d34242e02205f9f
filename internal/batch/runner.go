package batch

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/jonesrussell/shogo/internal/config"
	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/fetch"
	"github.com/jonesrussell/shogo/internal/logger"
	"github.com/jonesrussell/shogo/internal/metrics"
	"github.com/jonesrussell/shogo/internal/siteinfo"
	"github.com/jonesrussell/shogo/internal/store"
	"github.com/jonesrussell/shogo/internal/urlnorm"
)

// Extractor runs the extraction pipeline over fetched markup.
type Extractor interface {
	Extract(ctx context.Context, html, pageURL string) *extract.Result
}

// RobotsChecker gates fetches by robots.txt policy. CrawlDelay reads
// the cached policy for a host and returns zero when none is cached.
type RobotsChecker interface {
	IsAllowed(ctx context.Context, rawURL string) (bool, error)
	CrawlDelay(host string) time.Duration
}

// Summary aggregates the outcome of one run.
type Summary struct {
	RunID       string
	Total       int
	Succeeded   int
	Failed      int
	Blocked     int
	NamesFound  int
	EmailsFound int
	FormsFound  int
	SinkErrors  int
	Duration    time.Duration
}

// Runner drives rows through robots, fetch, extract, siteinfo, and
// persistence with a fixed pool of workers.
type Runner struct {
	cfg     config.BatchConfig
	engine  Extractor
	fetcher extract.Fetcher
	robots  RobotsChecker
	sink    store.Sink
	metrics *metrics.Metrics
	log     logger.Interface
	runID   string

	mu      sync.Mutex
	summary Summary
}

// New creates a batch runner. robots may be nil to skip robots.txt
// checks, and metrics may be nil.
func New(
	cfg config.BatchConfig,
	engine Extractor,
	fetcher extract.Fetcher,
	robots RobotsChecker,
	sink store.Sink,
	m *metrics.Metrics,
	log logger.Interface,
) *Runner {
	if log == nil {
		log = logger.NewNoOp()
	}
	runID := uuid.NewString()
	return &Runner{
		cfg:     cfg,
		engine:  engine,
		fetcher: fetcher,
		robots:  robots,
		sink:    sink,
		metrics: m,
		log:     log.WithRunID(runID),
		runID:   runID,
	}
}

// RunID returns the unique identifier for this run. Every stored record
// carries it.
func (r *Runner) RunID() string {
	return r.runID
}

// Run processes rows and blocks until all workers drain. Cancelling the
// context stops feeding new rows; rows already claimed by a worker run
// to completion when possible.
func (r *Runner) Run(ctx context.Context, rows []Row) Summary {
	start := time.Now()

	workers := r.cfg.Workers
	if workers < 1 {
		workers = config.DefaultBatchWorkers
	}
	if workers > len(rows) && len(rows) > 0 {
		workers = len(rows)
	}

	r.log.Info("Starting batch run", "rows", len(rows), "workers", workers)

	jobs := make(chan Row)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.worker(ctx, workerID, jobs)
		}(i)
	}

feed:
	for _, row := range rows {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- row:
		}
	}
	close(jobs)
	wg.Wait()

	r.mu.Lock()
	summary := r.summary
	r.mu.Unlock()
	summary.RunID = r.runID
	summary.Total = len(rows)
	summary.Duration = time.Since(start)

	r.log.Info("Batch run finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"blocked", summary.Blocked,
		"duration", summary.Duration.String(),
	)
	return summary
}

// worker is a single worker goroutine loop.
func (r *Runner) worker(ctx context.Context, workerID int, jobs <-chan Row) {
	log := r.log.With("worker_id", workerID)
	needDelay := false

	for row := range jobs {
		if ctx.Err() != nil {
			log.Info("worker stopping", "reason", "context cancelled")
			return
		}
		if needDelay && row.HTML == "" {
			if !r.sleepPoliteness(ctx, row.URL) {
				return
			}
		}
		needDelay = row.HTML == ""

		rec := r.processRow(ctx, row)
		r.persist(ctx, rec, log)
	}
}

// sleepPoliteness waits the configured delay plus jitter before the next
// fetch, honoring a larger robots.txt crawl-delay when one is cached for
// the host. Returns false when the context is cancelled while waiting.
func (r *Runner) sleepPoliteness(ctx context.Context, rawURL string) bool {
	delay := r.cfg.Delay
	if r.cfg.RandomDelay > 0 {
		delay += time.Duration(rand.Int63n(int64(r.cfg.RandomDelay)))
	}
	if r.robots != nil {
		if host, err := urlnorm.ExtractHost(rawURL); err == nil {
			if crawlDelay := r.robots.CrawlDelay(host); crawlDelay > delay {
				delay = crawlDelay
			}
		}
	}
	if delay <= 0 {
		return true
	}

	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

// processRow runs one row through the full pipeline and always returns a
// record, never an error: failures become failed records.
func (r *Runner) processRow(ctx context.Context, row Row) *store.Record {
	rowCtx, cancel := context.WithTimeout(ctx, r.cfg.RowTimeout)
	defer cancel()

	start := time.Now()
	rec := &store.Record{
		RowID:     row.ID,
		RunID:     r.runID,
		URL:       row.URL,
		GivenName: row.CompanyName,
		Outcome:   store.OutcomeOK,
	}
	defer func() {
		rec.ElapsedMS = time.Since(start).Milliseconds()
		rec.ProcessedAt = time.Now().UTC()
	}()

	html := row.HTML
	pageURL := row.URL
	if html == "" {
		if blocked := r.checkRobots(rowCtx, row.URL, rec); blocked {
			return rec
		}

		page, err := r.fetcher.FetchPage(rowCtx, row.URL)
		if err != nil {
			rec.Outcome = store.OutcomeFailed
			rec.Error = err.Error()
			var statusErr *fetch.StatusError
			if errors.As(err, &statusErr) {
				rec.StatusCode = statusErr.Code
			}
			return rec
		}

		html = page.Content
		rec.FinalURL = page.FinalURL
		rec.StatusCode = page.StatusCode
		if page.FinalURL != "" {
			pageURL = page.FinalURL
		}
		if r.metrics != nil {
			r.metrics.IncrementPagesFetched()
		}
	}

	if result := r.engine.Extract(rowCtx, html, pageURL); result != nil {
		rec.Company = *result
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		rec.Site = siteinfo.Collect(doc, pageURL)
	}
	return rec
}

// checkRobots marks rec blocked when robots.txt disallows the URL.
// Checker errors never block a row; the fetch surfaces them instead.
func (r *Runner) checkRobots(ctx context.Context, rawURL string, rec *store.Record) bool {
	if r.robots == nil {
		return false
	}
	allowed, err := r.robots.IsAllowed(ctx, rawURL)
	if err != nil || allowed {
		return false
	}
	rec.Outcome = store.OutcomeRobotsBlocked
	rec.Error = "robots.txt disallows fetching this URL"
	return true
}

func (r *Runner) persist(ctx context.Context, rec *store.Record, log logger.Interface) {
	if err := r.sink.Store(ctx, rec); err != nil {
		log.Error("Failed to store record", "row_id", rec.RowID, "url", rec.URL, "error", err)
		if r.metrics != nil {
			r.metrics.IncrementSinkErrors()
		}
		r.mu.Lock()
		r.summary.SinkErrors++
		r.mu.Unlock()
	} else if r.metrics != nil {
		r.metrics.IncrementSinkWrites()
	}
	if r.metrics != nil {
		r.metrics.ObserveRow(rec)
	}
	r.observe(rec)

	switch rec.Outcome {
	case store.OutcomeOK:
		log.Info("Row enriched",
			"row_id", rec.RowID,
			"url", rec.URL,
			"company", rec.Company.Value,
			"status", rec.StatusCode,
			"elapsed_ms", rec.ElapsedMS,
		)
	case store.OutcomeRobotsBlocked:
		log.Info("Row blocked by robots.txt", "row_id", rec.RowID, "url", rec.URL)
	default:
		log.Warn("Row failed", "row_id", rec.RowID, "url", rec.URL, "error", rec.Error)
	}
}

func (r *Runner) observe(rec *store.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch rec.Outcome {
	case store.OutcomeOK:
		r.summary.Succeeded++
	case store.OutcomeRobotsBlocked:
		r.summary.Blocked++
	default:
		r.summary.Failed++
	}
	if rec.Company.Value != "" {
		r.summary.NamesFound++
	}
	if rec.Site.Email != "" {
		r.summary.EmailsFound++
	}
	if rec.Site.InquiryURL != "" {
		r.summary.FormsFound++
	}
}
