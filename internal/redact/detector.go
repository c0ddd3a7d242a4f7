package redact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Detector is a compiled pattern detector for one recognizer. Detect is a
// pure function of its input text; matches within one detector never
// overlap because they come from a single sequential regex scan.
type Detector struct {
	Name     string
	Category Category
	Order    int
	Optional bool

	re      *regexp.Regexp
	tokenRE *regexp.Regexp // non-nil when the recognizer is token-scoped
	score   float64

	notPrecededByDigit bool
	notFollowedByDigit bool
}

func newDetector(rc *RecognizerConfig) (*Detector, error) {
	re, err := regexp.Compile(rc.Regex)
	if err != nil {
		return nil, fmt.Errorf("compiling regex: %w", err)
	}

	var tokenRE *regexp.Regexp
	if rc.RequiresToken != "" {
		tokenRE, err = regexp.Compile(`(?i)\b` + regexp.QuoteMeta(rc.RequiresToken) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling scope token: %w", err)
		}
	}

	return &Detector{
		Name:               rc.Name,
		Category:           Category(rc.Category),
		Order:              rc.Order,
		Optional:           rc.Optional,
		re:                 re,
		tokenRE:            tokenRE,
		score:              rc.Score,
		notPrecededByDigit: rc.NotPrecededByDigit,
		notFollowedByDigit: rc.NotFollowedByDigit,
	}, nil
}

// Detect returns the detector's matches in text as spans. Token-scoped
// detectors return nothing unless the scope token appears somewhere in
// the text; adjacency guards reject matches that touch a digit on the
// guarded side. A rejected match is skipped outright and the scan
// resumes after it, with no retry at a shifted position the way a real
// lookahead would.
func (d *Detector) Detect(text string) []Span {
	if d.tokenRE != nil && !d.tokenRE.MatchString(text) {
		return nil
	}

	var spans []Span
	for _, m := range d.re.FindAllStringIndex(text, -1) {
		if d.notPrecededByDigit && m[0] > 0 && isDigit(text[m[0]-1]) {
			continue
		}
		if d.notFollowedByDigit && m[1] < len(text) && isDigit(text[m[1]]) {
			continue
		}
		spans = append(spans, Span{
			Text:       text[m[0]:m[1]],
			Group:      d.Category,
			Start:      m[0],
			End:        m[1],
			Confidence: d.score,
		})
	}
	return spans
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// TitleDetector finds title-prefixed personal names ("Dr. Washington",
// "prof. Ada Lovelace"). The title match is case-insensitive; the name
// must be one or two capitalized words. Only the name portion becomes a
// PERSON span.
type TitleDetector struct {
	re    *regexp.Regexp
	score float64
}

// NewTitleDetector compiles the title vocabulary into a detector. Longer
// title variants are tried first so "Dr." wins over "Dr" when both match.
func NewTitleDetector(vocab *VocabFile) (*TitleDetector, error) {
	if len(vocab.Titles) == 0 {
		return nil, fmt.Errorf("empty title vocabulary")
	}

	titles := make([]string, len(vocab.Titles))
	copy(titles, vocab.Titles)
	sort.Slice(titles, func(i, j int) bool { return len(titles[i]) > len(titles[j]) })

	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = regexp.QuoteMeta(t)
	}

	pattern := `\b(?i:` + strings.Join(quoted, "|") + `)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling title pattern: %w", err)
	}

	score := vocab.TitleScore
	if score == 0 {
		score = 0.95
	}

	return &TitleDetector{re: re, score: score}, nil
}

// Detect returns PERSON spans for the name portion of each title match.
func (t *TitleDetector) Detect(text string) []Span {
	var spans []Span
	for _, m := range t.re.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		if start < 0 || end <= start {
			continue
		}
		spans = append(spans, Span{
			Text:       text[start:end],
			Group:      CategoryPerson,
			Start:      start,
			End:        end,
			Confidence: t.score,
		})
	}
	return spans
}
