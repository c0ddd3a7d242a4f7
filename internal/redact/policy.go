package redact

import "strings"

// StreetFilter suppresses LOCATION spans whose surface text is a common
// street component, so "State St" stays readable while cities and
// countries are still masked.
type StreetFilter struct {
	suffixes map[string]struct{}
}

// NewStreetFilter builds a filter from the street-suffix vocabulary.
func NewStreetFilter(words []string) *StreetFilter {
	suffixes := make(map[string]struct{}, len(words))
	for _, w := range words {
		suffixes[strings.ToLower(w)] = struct{}{}
	}
	return &StreetFilter{suffixes: suffixes}
}

// IsStreet reports whether surface is a bare street suffix or ends in
// one ("St", "Main Street"). Comparison is case-insensitive on the
// stripped surface text.
func (f *StreetFilter) IsStreet(surface string) bool {
	t := strings.ToLower(strings.TrimSpace(surface))
	if _, ok := f.suffixes[t]; ok {
		return true
	}
	words := strings.Fields(t)
	if len(words) >= 2 {
		_, ok := f.suffixes[words[len(words)-1]]
		return ok
	}
	return false
}

// ApplyPolicy restricts ents to the categories selected for masking and,
// when opts.FilterStreetNames is set, suppresses street-component
// LOCATION spans, counting them separately. PERSON and LOCATION are
// always selected; ORGANIZATION only with opts.MaskOrganizations.
// Spans of any other category pass out of the pipeline unmasked and
// uncounted.
func ApplyPolicy(text string, ents []Span, opts Options, streets *StreetFilter) (kept []Span, filtered map[Category]int) {
	filtered = make(map[Category]int)

	for _, e := range ents {
		switch e.Group {
		case CategoryPerson, CategoryLocation:
		case CategoryOrganization:
			if !opts.MaskOrganizations {
				continue
			}
		default:
			continue
		}

		if opts.FilterStreetNames && streets != nil && e.Group == CategoryLocation {
			if streets.IsStreet(text[e.Start:e.End]) {
				filtered[e.Group]++
				continue
			}
		}
		kept = append(kept, e)
	}
	return kept, filtered
}
