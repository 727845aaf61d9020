// Package summarizecmder provides the summarize command for aggregating a
// results table into a markdown report.
package summarizecmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/writebench/pkg/cliui"
	"github.com/papercomputeco/writebench/pkg/config"
	"github.com/papercomputeco/writebench/pkg/report"
	"github.com/papercomputeco/writebench/pkg/results/csvfile"
)

type summarizeCommander struct {
	inPath  string
	outPath string
	plain   bool
}

const summarizeLongDesc string = `Aggregate a results CSV into per-mode markdown tables of mean metric values
per (policy, budget), write the report to a file, and render it to the
terminal.

Examples:
  writebench summarize
  writebench summarize --in artifacts/results.csv --out artifacts/RESULTS_SUMMARY.md`

const summarizeShortDesc string = "Summarize a results table"

func NewSummarizeCmd() *cobra.Command {
	cmder := &summarizeCommander{}

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: summarizeShortDesc,
		Long:  summarizeLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("in") {
				cmder.inPath = cfg.Results.CSVPath
			}
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.inPath, "in", "i", "", "Results CSV to summarize")
	cmd.Flags().StringVarP(&cmder.outPath, "out", "o", "artifacts/RESULTS_SUMMARY.md", "Markdown report output path")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print raw markdown instead of rendering")

	return cmd
}

func (c *summarizeCommander) run() error {
	records, err := csvfile.ReadFile(c.inPath)
	if err != nil {
		return err
	}

	summary := report.Summary(records, report.DefaultMetrics())

	if err := os.MkdirAll(filepath.Dir(c.outPath), 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	if err := os.WriteFile(c.outPath, []byte(summary), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if c.plain {
		fmt.Print(summary)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(summary)
	if err != nil {
		// Fall back to raw markdown when the terminal renderer fails.
		fmt.Print(summary)
		return nil
	}
	fmt.Print(rendered)
	return nil
}
