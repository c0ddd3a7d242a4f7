package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/veildata/veil/internal/config"
	"github.com/veildata/veil/internal/otel"
	"github.com/veildata/veil/internal/redact"
	"github.com/veildata/veil/internal/report"
)

const (
	redactedFileName = "redacted_output.txt"
	reportFileName   = "entities_report.jsonl"
)

var (
	redactMinScore      float64
	redactMaskOrgs      bool
	redactMaskZIPs      bool
	redactFilterStreets bool
	redactEnableRecs    []string
	redactPatternFile   string
	redactNERURL        string
	redactOutDir        string
)

var redactCmd = &cobra.Command{
	Use:   "redact <input-file>",
	Short: "Redact PII from a text file, one line per record",
	Long: `Reads the input file line by line, masks detected PII, and writes
redacted_output.txt plus entities_report.jsonl next to the input
(or into --out-dir). Empty lines are skipped. A failing NER call
aborts the whole run so report and output never drift apart.`,
	Args: cobra.ExactArgs(1),
	RunE: runRedact,
}

func init() {
	redactCmd.Flags().Float64Var(&redactMinScore, "min-score", redact.DefaultMinScore, "minimum NER confidence to mask")
	redactCmd.Flags().BoolVar(&redactMaskOrgs, "mask-org", false, "also mask organizations")
	redactCmd.Flags().BoolVar(&redactMaskZIPs, "mask-zip", false, "also mask U.S. ZIP codes")
	redactCmd.Flags().BoolVar(&redactFilterStreets, "filter-streets", false, "filter out common street name components")
	redactCmd.Flags().StringSliceVar(&redactEnableRecs, "enable-recognizer", nil, "enable an optional recognizer by name (repeatable)")
	redactCmd.Flags().StringVar(&redactPatternFile, "patterns", "", "recognizer overrides YAML layered on the built-ins")
	redactCmd.Flags().StringVar(&redactNERURL, "ner-url", "", "NER inference endpoint (overrides config)")
	redactCmd.Flags().StringVar(&redactOutDir, "out-dir", "", "output directory (default: input file's directory)")
	rootCmd.AddCommand(redactCmd)
}

//nolint:gocyclo // the run loop threads file IO, the pipeline, and reporting
func runRedact(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "redact.run")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	inputPath := args[0]
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	defer in.Close()

	provider, err := buildProvider(cfg, redactNERURL)
	if err != nil {
		return err
	}
	var popts []redact.PipelineOption
	if redactPatternFile != "" {
		popts = append(popts, redact.WithPatternFile(redactPatternFile))
	}
	pipeline, err := redact.New(provider, popts...)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	opts := redact.Options{
		MinScore:            redactMinScore,
		MaskOrganizations:   redactMaskOrgs,
		MaskZIPCodes:        redactMaskZIPs,
		FilterStreetNames:   redactFilterStreets,
		OptionalRecognizers: redactEnableRecs,
	}

	outDir := redactOutDir
	if outDir == "" {
		outDir = filepath.Dir(inputPath)
	}
	reportPath := filepath.Join(outDir, reportFileName)
	reportFile, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("report file: %w", err)
	}
	defer reportFile.Close()
	writer := report.NewWriter(reportFile)

	log.Info().
		Str("provider", provider.Name()).
		Float64("min_score", opts.MinScore).
		Bool("filter_streets", opts.FilterStreetNames).
		Msg("redaction_started")

	summary := redact.NewSummary()
	var maskedLines []string

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		res, err := pipeline.Process(ctx, scanner.Text(), opts)
		if err != nil {
			return fmt.Errorf("processing line %d: %w", summary.Lines+1, err)
		}
		if res == nil {
			continue
		}
		if err := writer.WriteLine(res); err != nil {
			return err
		}
		summary.Fold(res)
		maskedLines = append(maskedLines, res.Masked)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	redactedPath := filepath.Join(outDir, redactedFileName)
	if err := os.WriteFile(redactedPath, []byte(strings.Join(maskedLines, "\n")), 0o644); err != nil {
		return fmt.Errorf("writing redacted output: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Done ===")
	fmt.Fprintf(out, "- Entities report: %s\n", reportPath)
	fmt.Fprintf(out, "- Redacted text : %s\n", redactedPath)
	fmt.Fprintln(out)
	report.WriteSummary(out, summary)

	saveRunRecord(ctx, cfg, provider.Name(), opts, summary)
	return nil
}

// saveRunRecord records the run in the history store. Best effort: a
// store failure is logged, not fatal, since the user's outputs are
// already on disk.
func saveRunRecord(ctx context.Context, cfg *config.Config, providerName string, opts redact.Options, summary *redact.Summary) {
	if err := cfg.EnsureDataDir(); err != nil {
		log.Warn().Err(err).Msg("run_record_skipped")
		return
	}
	store, err := report.NewStore(cfg.ReportDBPath())
	if err != nil {
		log.Warn().Err(err).Msg("run_record_skipped")
		return
	}
	defer store.Close()

	rec := &report.RunRecord{
		Provider:       providerName,
		Options:        opts,
		Lines:          summary.Lines,
		Counts:         summary.Counts,
		FilteredCounts: summary.FilteredCounts,
	}
	if err := store.Save(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("run_record_save_failed")
		return
	}
	log.Debug().Str("run_id", rec.ID).Func(otel.LogTraceFields(ctx)).Msg("run_recorded")
}
