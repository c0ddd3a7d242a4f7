// Package redact implements the layered PII redaction pipeline: text
// normalization, regex pattern detection, confidence filtering of NER
// spans, title-name merging, street policy filtering, and right-to-left
// span masking over the canonical text.
package redact

import "strings"

// Category identifies a class of personally identifiable information.
type Category string

// The closed category set. NER backends contribute PERSON, LOCATION, and
// ORGANIZATION; the pattern recognizers contribute the rest.
const (
	CategoryPerson       Category = "PERSON"
	CategoryLocation     Category = "LOCATION"
	CategoryOrganization Category = "ORGANIZATION"
	CategoryEmail        Category = "EMAIL"
	CategoryPhone        Category = "PHONE"
	CategorySSN          Category = "SSN"
	CategoryZIP          Category = "ZIP"
)

// redactionTokens maps each category to its fixed replacement token.
var redactionTokens = map[Category]string{
	CategoryPerson:       "[PERSON_REDACTED]",
	CategoryLocation:     "[LOC_REDACTED]",
	CategoryOrganization: "[ORG_REDACTED]",
	CategoryEmail:        "[EMAIL_REDACTED]",
	CategoryPhone:        "[PHONE_REDACTED]",
	CategorySSN:          "[SSN_REDACTED]",
	CategoryZIP:          "[ZIP_REDACTED]",
}

// Token returns the redaction token for the category. Unknown categories
// fall back to a bracketed form of their own name.
func (c Category) Token() string {
	if t, ok := redactionTokens[c]; ok {
		return t
	}
	return "[" + string(c) + "_REDACTED]"
}

// SummaryOrder is the fixed order categories appear in printed summaries.
var SummaryOrder = []Category{
	CategoryPerson,
	CategoryLocation,
	CategoryOrganization,
	CategoryEmail,
	CategoryPhone,
	CategorySSN,
	CategoryZIP,
}

// NormalizeGroup maps NER group labels to categories. CoNLL-style short
// labels (PER, LOC, ORG) and their long forms are recognized; anything
// else is kept as an uppercased category so it survives into reports,
// though it will never be masked.
func NormalizeGroup(group string) Category {
	switch strings.ToUpper(strings.TrimSpace(group)) {
	case "PER", "PERSON":
		return CategoryPerson
	case "LOC", "LOCATION":
		return CategoryLocation
	case "ORG", "ORGANIZATION":
		return CategoryOrganization
	default:
		return Category(strings.ToUpper(strings.TrimSpace(group)))
	}
}

// Span is a contiguous byte range in the canonical text tagged with a
// category and confidence. Offsets always refer to the canonical
// (post-Normalize) text of one line; they become invalid once any
// substitution touches that text. Invariant: 0 <= Start < End <= len(text).
type Span struct {
	Text       string   `json:"surface_text"`
	Group      Category `json:"group"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Confidence float64  `json:"confidence"`
}

// Overlaps reports whether the two [Start,End) ranges intersect.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// LineResult is the outcome of processing one input line.
type LineResult struct {
	Original       string
	Canonical      string
	Entities       []Span // post-filter, post-merge; what the report records
	Masked         string
	Counts         map[Category]int
	FilteredCounts map[Category]int
}

// Summary accumulates masked and filtered counts across a run. It is an
// explicit accumulator owned by the processing loop; the pipeline itself
// holds no run-wide mutable state.
type Summary struct {
	Lines          int
	Counts         map[Category]int
	FilteredCounts map[Category]int
}

// NewSummary returns an empty accumulator.
func NewSummary() *Summary {
	return &Summary{
		Counts:         make(map[Category]int),
		FilteredCounts: make(map[Category]int),
	}
}

// Fold adds one line's counts into the summary.
func (s *Summary) Fold(res *LineResult) {
	if res == nil {
		return
	}
	s.Lines++
	for c, n := range res.Counts {
		s.Counts[c] += n
	}
	for c, n := range res.FilteredCounts {
		s.FilteredCounts[c] += n
	}
}

// Total returns the number of masked spans across all categories.
func (s *Summary) Total() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}
