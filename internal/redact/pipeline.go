package redact

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/veildata/veil/internal/ner"
	veilotel "github.com/veildata/veil/internal/otel"
)

var tracer = veilotel.Tracer("github.com/veildata/veil/internal/redact")

// Options configures one redaction run. The zero value is not useful;
// start from DefaultOptions.
type Options struct {
	MinScore          float64 `json:"min_score"`
	MaskOrganizations bool    `json:"mask_organizations"`
	MaskZIPCodes      bool    `json:"mask_zip_codes"`
	FilterStreetNames bool    `json:"filter_street_names"`

	// OptionalRecognizers enables optional pattern recognizers by name
	// for this run, e.g. ones layered in via WithPatternFile. The
	// built-in ZIP recognizer has its own MaskZIPCodes toggle but can be
	// named here too.
	OptionalRecognizers []string `json:"optional_recognizers,omitempty"`
}

// enabledOptional resolves the option flags into the set of optional
// recognizer names active for this run.
func (o Options) enabledOptional() map[string]bool {
	enabled := make(map[string]bool, len(o.OptionalRecognizers)+1)
	if o.MaskZIPCodes {
		enabled[RecognizerZIP] = true
	}
	for _, name := range o.OptionalRecognizers {
		enabled[name] = true
	}
	return enabled
}

// DefaultOptions returns the documented defaults: threshold 0.80,
// organizations and ZIP codes unmasked, street filtering off.
func DefaultOptions() Options {
	return Options{MinScore: DefaultMinScore}
}

// Pipeline runs the per-line redaction flow: normalize, NER, confidence
// filter, title merge, policy filter, entity masking, pattern masking.
// A Pipeline is immutable after construction and safe for sequential
// reuse across lines; per-run knobs travel in Options so one compiled
// pipeline serves differently configured requests.
type Pipeline struct {
	provider  ner.Provider
	detectors []*Detector
	titles    *TitleDetector
	streets   *StreetFilter
}

// PipelineOption configures pipeline construction.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	patternFile string
	recognizers []RecognizerConfig
}

// WithPatternFile layers recognizer overrides from a YAML file on top of
// the embedded defaults. A missing file is silently skipped.
func WithPatternFile(path string) PipelineOption {
	return func(c *pipelineConfig) { c.patternFile = path }
}

// WithRecognizers layers in-code recognizer overrides on top of the
// defaults and any pattern file.
func WithRecognizers(recognizers []RecognizerConfig) PipelineOption {
	return func(c *pipelineConfig) { c.recognizers = recognizers }
}

// New builds a pipeline around the given NER provider. Without options it
// compiles the embedded recognizers and vocabularies.
func New(provider ner.Provider, opts ...PipelineOption) (*Pipeline, error) {
	var cfg pipelineConfig
	for _, o := range opts {
		o(&cfg)
	}

	defaults, err := DefaultRecognizers()
	if err != nil {
		return nil, fmt.Errorf("loading default recognizers: %w", err)
	}

	layers := [][]RecognizerConfig{defaults}
	if cfg.patternFile != "" {
		rf, err := LoadRecognizerFile(cfg.patternFile)
		if err != nil {
			return nil, fmt.Errorf("loading pattern file: %w", err)
		}
		if rf != nil {
			layers = append(layers, rf.Recognizers)
		}
	}
	if len(cfg.recognizers) > 0 {
		layers = append(layers, cfg.recognizers)
	}

	detectors, err := CompileDetectors(MergeRecognizers(layers...))
	if err != nil {
		return nil, fmt.Errorf("compiling detectors: %w", err)
	}

	vocab, err := DefaultVocab()
	if err != nil {
		return nil, fmt.Errorf("loading vocab: %w", err)
	}
	titles, err := NewTitleDetector(vocab)
	if err != nil {
		return nil, fmt.Errorf("compiling title detector: %w", err)
	}

	return &Pipeline{
		provider:  provider,
		detectors: detectors,
		titles:    titles,
		streets:   NewStreetFilter(vocab.StreetSuffixes),
	}, nil
}

// MustNew is like New but panics on error. Useful for zero-config startup
// where the embedded defaults are expected to always compile.
func MustNew(provider ner.Provider, opts ...PipelineOption) *Pipeline {
	p, err := New(provider, opts...)
	if err != nil {
		panic(fmt.Sprintf("redact.New: %v", err))
	}
	return p
}

// Provider returns the NER backend this pipeline calls.
func (p *Pipeline) Provider() ner.Provider {
	return p.provider
}

// Process redacts one input line. Empty and whitespace-only lines are
// skipped entirely: they return (nil, nil) and contribute neither a
// report record nor counts. A failing NER call returns an error; the
// caller is expected to abort the run rather than skip the line, so the
// report and redacted output never drift apart.
func (p *Pipeline) Process(ctx context.Context, line string, opts Options) (*LineResult, error) {
	ctx, span := tracer.Start(ctx, "redact.line")
	defer span.End()

	canonical := Normalize(line)
	if canonical == "" {
		return nil, nil
	}

	raw, err := p.provider.Detect(ctx, canonical)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ner detect (%s): %w", p.provider.Name(), err)
	}

	ents := FilterEntities(canonical, raw, opts.MinScore)
	ents = MergeTitleNames(canonical, ents, p.titles)

	selected, filteredCounts := ApplyPolicy(canonical, ents, opts, p.streets)
	selected = ResolveOverlaps(selected)

	masked, counts := MaskEntities(canonical, selected)
	masked, patternCounts := MaskPatterns(masked, p.detectors, opts.enabledOptional())
	for c, n := range patternCounts {
		counts[c] += n
	}

	recordMaskCounts(ctx, counts)

	span.SetAttributes(
		attribute.Int("redact.entity_count", len(ents)),
		attribute.Int("redact.masked_count", total(counts)),
	)

	return &LineResult{
		Original:       line,
		Canonical:      canonical,
		Entities:       ents,
		Masked:         masked,
		Counts:         counts,
		FilteredCounts: filteredCounts,
	}, nil
}

func total(counts map[Category]int) int {
	n := 0
	for _, v := range counts {
		n += v
	}
	return n
}
