package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/veildata/veil/internal/config"
	"github.com/veildata/veil/internal/redact"
	"github.com/veildata/veil/internal/report"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print recent redaction runs and aggregate counts",
	RunE:  runReportCmd,
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 10, "number of recent runs to show")
	rootCmd.AddCommand(reportCmd)
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	store, err := report.NewStore(cfg.ReportDBPath())
	if err != nil {
		return fmt.Errorf("initializing report store: %w", err)
	}
	defer store.Close()

	runs, err := store.List(ctx, reportLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	totals := make(map[redact.Category]int)
	totalLines := 0
	fmt.Fprintf(out, "Recent runs (%d):\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(out, "  %s  %.8s  provider=%s  lines=%d  masked=%d\n",
			r.Timestamp.Format(time.RFC3339), r.ID, r.Provider, r.Lines, countTotal(r.Counts))
		for c, n := range r.Counts {
			totals[c] += n
		}
		totalLines += r.Lines
	}

	fmt.Fprintf(out, "\nAggregate over %d runs (%d lines):\n", len(runs), totalLines)
	for _, c := range redact.SummaryOrder {
		if n := totals[c]; n > 0 {
			fmt.Fprintf(out, "  %-12s: %d\n", c, n)
		}
	}
	return nil
}

func countTotal(counts map[redact.Category]int) int {
	n := 0
	for _, v := range counts {
		n += v
	}
	return n
}
