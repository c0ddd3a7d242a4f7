package redact

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/veildata/veil/internal/ner"
)

// DefaultMinScore is the default NER confidence threshold. The valid
// range is [0,1]; interactive frontends usually restrict it to
// [0.70, 0.95].
const DefaultMinScore = 0.80

// FilterEntities validates raw NER output into typed spans and keeps
// those with confidence >= minScore. Coercion is deliberately lenient
// for low-trust external data: an unparseable confidence counts as 0.0
// (excluded unless minScore is 0), and spans whose offsets cannot be
// coerced or fall outside the canonical text are dropped. The filter is
// purely local; it never consults other spans.
func FilterEntities(text string, raw []ner.RawSpan, minScore float64) []Span {
	spans := make([]Span, 0, len(raw))
	for _, r := range raw {
		conf := coerceFloat(r.Score)
		if conf < minScore {
			continue
		}
		start, okStart := coerceInt(r.Start)
		end, okEnd := coerceInt(r.End)
		if !okStart || !okEnd || start < 0 || end <= start || end > len(text) {
			continue
		}
		sp := Span{
			Text:       r.Text,
			Group:      NormalizeGroup(r.Group),
			Start:      start,
			End:        end,
			Confidence: conf,
		}
		if sp.Text == "" {
			sp.Text = text[start:end]
		}
		spans = append(spans, sp)
	}
	return spans
}

// coerceFloat reads a JSON number or numeric string; anything else is 0.0.
func coerceFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return 0
}

// coerceInt reads a JSON integer, float (truncated), or numeric string.
func coerceInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(v), true
		}
	}
	return 0, false
}
