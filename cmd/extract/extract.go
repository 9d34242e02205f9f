// Package extract implements the single-page extraction command.
package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/shogo/cmd/common"
	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/siteinfo"
)

// output is the single-page result printed to stdout.
type output struct {
	URL      string          `json:"url"`
	FinalURL string          `json:"final_url,omitempty"`
	Company  json.RawMessage `json:"company"`
	Site     siteinfo.Info   `json:"site"`
}

// Command returns the extract command for use in the root command.
func Command() *cobra.Command {
	var (
		htmlFile       string
		showCandidates bool
	)

	cmd := &cobra.Command{
		Use:   "extract [url]",
		Short: "Extract the company name from one page",
		Long: `Extract the legal company name from a single page and print the result
as JSON. The page is fetched unless --html points at a local file, in
which case the URL only provides link-resolution context.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			return runExtract(cmd, deps, args[0], htmlFile, showCandidates)
		},
	}

	cmd.Flags().StringVar(&htmlFile, "html", "", "read markup from a local file instead of fetching")
	cmd.Flags().BoolVar(&showCandidates, "candidates", false, "print the candidate audit trail as a table")
	return cmd
}

func runExtract(cmd *cobra.Command, deps cmdcommon.CommandDeps, url, htmlFile string, showCandidates bool) error {
	pipeline, err := cmdcommon.BuildPipeline(deps)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := output{URL: url}

	var html string
	if htmlFile != "" {
		raw, readErr := os.ReadFile(htmlFile)
		if readErr != nil {
			return fmt.Errorf("failed to read html file: %w", readErr)
		}
		html = string(raw)
	} else {
		if pipeline.Robots != nil {
			allowed, robotsErr := pipeline.Robots.IsAllowed(ctx, url)
			if robotsErr == nil && !allowed {
				return fmt.Errorf("robots.txt disallows fetching %s", url)
			}
		}
		page, fetchErr := pipeline.Fetcher.FetchPage(ctx, url)
		if fetchErr != nil {
			return fmt.Errorf("failed to fetch page: %w", fetchErr)
		}
		html = page.Content
		out.FinalURL = page.FinalURL
		if page.FinalURL != "" {
			url = page.FinalURL
		}
	}

	result := pipeline.Engine.Extract(ctx, html, url)
	company, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	out.Company = company

	if doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html)); docErr == nil {
		out.Site = siteinfo.Collect(doc, url)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

	if showCandidates {
		renderCandidates(cmd.OutOrStdout(), result.Candidates)
	}
	return nil
}

// renderCandidates prints the audit trail, duplicates included, in the
// order the phases produced them.
func renderCandidates(out io.Writer, candidates []extract.Candidate) {
	if len(candidates) == 0 {
		fmt.Fprintln(out, "No candidates produced.")
		return
	}

	t := cmdcommon.NewTableWriter(out)
	t.AppendHeader(table.Row{"Method", "Value", "Confidence", "Marker", "Context"})
	for _, c := range candidates {
		t.AppendRow(table.Row{
			string(c.Method),
			c.Value,
			strconv.FormatFloat(c.Confidence, 'f', 2, 64),
			strconv.FormatBool(c.HasLegalMarker),
			c.SourceContext,
		})
	}
	t.Render()
}
