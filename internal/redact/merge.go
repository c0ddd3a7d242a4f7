package redact

// MergeTitleNames runs the title detector over the canonical text and
// appends the PERSON spans it finds to ents. A title-derived span is
// discarded when its character range intersects any PERSON span already
// in ents — the NER-native detection wins. Partial overlap counts.
// Spans of other categories are never consulted; cross-category
// de-duplication happens later, at the masking boundary.
func MergeTitleNames(text string, ents []Span, titles *TitleDetector) []Span {
	if titles == nil {
		return ents
	}

	merged := make([]Span, len(ents))
	copy(merged, ents)

	for _, cand := range titles.Detect(text) {
		covered := false
		for _, e := range ents {
			if e.Group == CategoryPerson && cand.Overlaps(e) {
				covered = true
				break
			}
		}
		if !covered {
			merged = append(merged, cand)
		}
	}
	return merged
}
