package common

import (
	"fmt"

	"github.com/jonesrussell/shogo/internal/ai"
	"github.com/jonesrussell/shogo/internal/config"
	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/fetch"
	"github.com/jonesrussell/shogo/internal/logger"
	"github.com/jonesrussell/shogo/internal/metrics"
	"github.com/jonesrussell/shogo/internal/robots"
)

// NewCommandDeps creates CommandDeps by loading config and creating the
// logger. This consolidates the common initialization code for every
// subcommand.
func NewCommandDeps() (CommandDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return CommandDeps{}, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := CommandDeps{
		Logger: log,
		Config: cfg,
	}
	if err := deps.Validate(); err != nil {
		return CommandDeps{}, err
	}
	return deps, nil
}

// Pipeline bundles the extraction stack shared by the extract, enrich,
// and serve commands.
type Pipeline struct {
	Engine  *extract.Engine
	Fetcher *fetch.Client
	Robots  *robots.Checker
	Metrics *metrics.Metrics
	Bus     *extract.Bus
}

// BuildPipeline wires the fetcher, robots checker, optional AI client,
// metrics, and engine from configuration.
func BuildPipeline(deps CommandDeps) (*Pipeline, error) {
	cfg := deps.Config
	log := deps.Logger

	fetcher := fetch.New(fetch.Config{
		Timeout:      cfg.Fetcher.Timeout,
		MaxRetries:   cfg.Fetcher.MaxRetries,
		RetryDelay:   cfg.Fetcher.RetryDelay,
		MaxBodySize:  cfg.Fetcher.MaxBodySize,
		MaxRedirects: cfg.Fetcher.MaxRedirects,
		UserAgent:    cfg.Fetcher.UserAgent,
	}, log)

	var checker *robots.Checker
	if cfg.Robots.Enabled {
		checker = robots.New(robots.Config{
			CacheTTL:    cfg.Robots.CacheTTL,
			Timeout:     cfg.Robots.Timeout,
			MaxBodySize: cfg.Robots.MaxBodySize,
			UserAgent:   cfg.Fetcher.UserAgent,
		}, log)
	}

	var aiClient extract.AIExtractor
	if cfg.AI.Enabled && cfg.AI.Mode != config.ModeRuleOnly {
		client, err := ai.New(ai.Config{
			Provider:         cfg.AI.Provider,
			APIKey:           cfg.AI.APIKey,
			Model:            cfg.AI.Model,
			BaseURL:          cfg.AI.BaseURL,
			Timeout:          cfg.AI.Timeout,
			MaxContentLength: cfg.AI.MaxContentLength,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("create ai client: %w", err)
		}
		aiClient = client
	}

	m := metrics.NewMetrics()
	bus := extract.NewBus()
	bus.Subscribe(metrics.NewEventSink(m))
	if cfg.App.Debug {
		bus.Subscribe(extract.NewLoggerSink(log))
	}

	engine := extract.New(extract.Config{
		MaxAuxPages: cfg.Extractor.MaxAuxPages,
		Mode:        cfg.AI.Mode,
		AIThreshold: cfg.AI.ConfidenceThreshold,
	}, fetcher, aiClient, bus, log)

	return &Pipeline{
		Engine:  engine,
		Fetcher: fetcher,
		Robots:  checker,
		Metrics: m,
		Bus:     bus,
	}, nil
}
