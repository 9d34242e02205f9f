// Package enrich implements the batch enrichment command that runs the
// extraction pipeline over a list of company sites.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/shogo/cmd/common"
	"github.com/jonesrussell/shogo/internal/batch"
	"github.com/jonesrussell/shogo/internal/metrics"
)

// Command returns the enrich command for use in the root command.
func Command() *cobra.Command {
	var (
		input    string
		schedule string
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich a list of company sites",
		Long: `Run the extraction pipeline over every row of an input list (.csv,
.jsonl, or .ndjson) and persist the results to the configured storage
backend.

With --schedule the run repeats on a cron expression (standard 5-field
format) until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			if schedule == "" {
				return runOnce(cmd.Context(), cmd.OutOrStdout(), deps, input)
			}
			return runScheduled(cmd.Context(), cmd.OutOrStdout(), deps, input, schedule)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input list (.csv, .jsonl, .ndjson)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression for repeated runs (minute hour day month weekday)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runOnce(ctx context.Context, out io.Writer, deps cmdcommon.CommandDeps, input string) error {
	rows, err := batch.ReadRows(input)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.New("input contains no usable rows")
	}

	pipeline, err := cmdcommon.BuildPipeline(deps)
	if err != nil {
		return err
	}

	sink, err := cmdcommon.CreateSink(deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			deps.Logger.Error("Failed to close sink", "error", closeErr)
		}
	}()

	var robotsChecker batch.RobotsChecker
	if pipeline.Robots != nil {
		robotsChecker = pipeline.Robots
	}

	runner := batch.New(
		deps.Config.Batch,
		pipeline.Engine,
		pipeline.Fetcher,
		robotsChecker,
		sink,
		pipeline.Metrics,
		deps.Logger,
	)

	deps.Logger.Info("Starting enrichment run", "rows", len(rows), "workers", deps.Config.Batch.Workers)
	summary := runner.Run(ctx, rows)
	renderSummary(out, summary, pipeline.Metrics.Snapshot())
	return nil
}

// runScheduled repeats runOnce on a cron schedule until the context is
// canceled. Overlapping runs are prevented by cron's job chain.
func runScheduled(ctx context.Context, out io.Writer, deps cmdcommon.CommandDeps, input, schedule string) error {
	// Use standard 5-field cron parser (minute hour day month weekday)
	cronParser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger), cron.Recover(cron.DefaultLogger)),
	)

	_, err := c.AddFunc(schedule, func() {
		if runErr := runOnce(ctx, out, deps, input); runErr != nil {
			deps.Logger.Error("Scheduled run failed", "error", runErr)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	deps.Logger.Info("Scheduler started", "schedule", schedule, "input", input)
	c.Start()

	<-ctx.Done()
	deps.Logger.Info("Shutdown signal received, waiting for running jobs")
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

// renderSummary prints the run outcome as a borderless two-column table.
func renderSummary(out io.Writer, sum batch.Summary, snap metrics.Snapshot) {
	t := cmdcommon.NewTableWriter(out)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Run ID", sum.RunID},
		{"Rows", strconv.Itoa(sum.Total)},
		{"Succeeded", strconv.Itoa(sum.Succeeded)},
		{"Failed", strconv.Itoa(sum.Failed)},
		{"Robots blocked", strconv.Itoa(sum.Blocked)},
		{"Names found", strconv.Itoa(sum.NamesFound)},
		{"Emails found", strconv.Itoa(sum.EmailsFound)},
		{"Inquiry forms found", strconv.Itoa(sum.FormsFound)},
		{"Pages fetched", strconv.FormatInt(snap.PagesFetched, 10)},
		{"Candidates produced", strconv.FormatInt(snap.CandidatesProduced, 10)},
		{"AI suggestions", strconv.FormatInt(snap.AISuggestions, 10)},
		{"Faults recovered", strconv.FormatInt(snap.Faults, 10)},
		{"Sink writes", strconv.FormatInt(snap.SinkWrites, 10)},
		{"Sink errors", strconv.FormatInt(snap.SinkErrors, 10)},
		{"Duration", sum.Duration.Round(time.Millisecond).String()},
	})
	t.Render()
}
