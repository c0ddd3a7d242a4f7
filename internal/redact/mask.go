package redact

import "sort"

// categoryPriority orders categories for cross-category overlap
// resolution. Higher wins. Pattern categories never reach this path;
// they are substituted in their own passes.
var categoryPriority = map[Category]int{
	CategoryPerson:       3,
	CategoryOrganization: 2,
	CategoryLocation:     1,
}

// ResolveOverlaps drops lower-priority spans that overlap a kept span,
// so the masker only ever sees pairwise non-overlapping ranges. Priority
// is PERSON > ORGANIZATION > LOCATION; within a class the earlier, then
// longer, span wins. The returned slice is sorted by start.
func ResolveOverlaps(spans []Span) []Span {
	if len(spans) <= 1 {
		return spans
	}

	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := categoryPriority[ordered[i].Group], categoryPriority[ordered[j].Group]
		if pi != pj {
			return pi > pj
		}
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].End-ordered[i].Start > ordered[j].End-ordered[j].Start
	})

	var kept []Span
	for _, s := range ordered {
		overlaps := false
		for _, k := range kept {
			if s.Overlaps(k) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, s)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// MaskEntities replaces each span's range with its category token in a
// single descending-start pass and returns the masked text with
// per-category counts. Descending order is what keeps the remaining
// offsets valid: each substitution changes the text length, but only to
// the right of every span not yet processed. Spans must be pairwise
// non-overlapping (see ResolveOverlaps).
func MaskEntities(text string, spans []Span) (string, map[Category]int) {
	counts := make(map[Category]int)
	if len(spans) == 0 {
		return text, counts
	}

	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	for _, s := range ordered {
		text = text[:s.Start] + s.Group.Token() + text[s.End:]
		counts[s.Group]++
	}
	return text, counts
}

// MaskPatterns runs the detectors in registry order over text, each with
// its own detect-then-substitute pass. Running on already-entity-masked
// text is fine: the pattern matches are syntactic and unaffected by
// nearby redaction tokens. Detectors marked optional are skipped unless
// optional names them.
func MaskPatterns(text string, detectors []*Detector, optional map[string]bool) (string, map[Category]int) {
	counts := make(map[Category]int)

	for _, d := range detectors {
		if d.Optional && !optional[d.Name] {
			continue
		}
		spans := d.Detect(text)
		for i := len(spans) - 1; i >= 0; i-- {
			s := spans[i]
			text = text[:s.Start] + s.Group.Token() + text[s.End:]
			counts[s.Group]++
		}
	}
	return text, counts
}
